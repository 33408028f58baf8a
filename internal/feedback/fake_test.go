// AngelaMos | 2026
// fake_test.go

package feedback

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/core"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// adStore is a minimal ad.Repository so tests can drive the real ad service
// alongside feedback.
type adStore struct {
	mu     sync.Mutex
	rows   map[int64]ad.Ad
	nextID int64
	clock  *clock
}

func (s *adStore) Create(_ context.Context, a *ad.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = s.clock.tick()
	s.rows[a.ID] = *a
	return nil
}

func (s *adStore) GetByID(_ context.Context, id int64) (*ad.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("get ad %d: %w", id, core.ErrNotFound)
	}
	return &a, nil
}

func (s *adStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok, nil
}

func (s *adStore) List(_ context.Context, params ad.ListParams) ([]ad.Ad, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ad.Ad, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (s *adStore) Update(_ context.Context, a *ad.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[a.ID] = *a
	return nil
}

func (s *adStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("delete ad %d: %w", id, core.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

// memRepo mirrors the feedbacks table, including ON DELETE SET NULL on ad_id
// once the owning store reports an ad gone.
type memRepo struct {
	mu     sync.Mutex
	rows   map[int64]Feedback
	nextID int64
	clock  *clock
	ads    *adStore
}

func (m *memRepo) Create(ctx context.Context, f *Feedback) error {
	if f.AdID != nil {
		if ok, _ := m.ads.Exists(ctx, *f.AdID); !ok {
			return fmt.Errorf("create feedback: feedbacks_ad_id_fkey: %w", core.ErrForeignKey)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	f.ID = m.nextID
	f.CreatedAt = m.clock.tick()
	m.rows[f.ID] = *f
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("get feedback %d: %w", id, core.ErrNotFound)
	}
	return &f, nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]Feedback, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Feedback
	for _, f := range m.rows {
		if params.AdID != nil && (f.AdID == nil || *f.AdID != *params.AdID) {
			continue
		}
		if params.AuthorID != nil && (f.AuthorID == nil || *f.AuthorID != *params.AuthorID) {
			continue
		}
		matched = append(matched, f)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit(), total)
	return matched[start:end], total, nil
}

func (m *memRepo) Update(_ context.Context, f *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[f.ID]; !ok {
		return fmt.Errorf("update feedback %d: %w", f.ID, core.ErrNotFound)
	}
	m.rows[f.ID] = *f
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return fmt.Errorf("delete feedback %d: %w", id, core.ErrNotFound)
	}
	delete(m.rows, id)
	return nil
}

// detach nulls ad_id on feedback whose ad was deleted.
func (m *memRepo) detach(adID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.rows {
		if f.AdID != nil && *f.AdID == adID {
			f.AdID = nil
			m.rows[id] = f
		}
	}
}

func ptr[T any](v T) *T { return &v }
