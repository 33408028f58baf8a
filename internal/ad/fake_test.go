// AngelaMos | 2026
// fake_test.go

package ad

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// memRepo is an in-memory Repository ordered the way the SQL one is.
type memRepo struct {
	mu     sync.Mutex
	rows   map[int64]Ad
	nextID int64
	clock  time.Time
	users  map[string]bool
}

func newMemRepo(users ...string) *memRepo {
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u] = true
	}
	return &memRepo{
		rows:  make(map[int64]Ad),
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		users: known,
	}
}

func (m *memRepo) Create(_ context.Context, a *Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.AuthorID != nil && !m.users[*a.AuthorID] {
		return fmt.Errorf("create ad: ads_author_id_fkey: %w", core.ErrForeignKey)
	}

	m.nextID++
	m.clock = m.clock.Add(time.Second)
	a.ID = m.nextID
	a.CreatedAt = m.clock
	m.rows[a.ID] = *a
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("get ad %d: %w", id, core.ErrNotFound)
	}
	return &a, nil
}

func (m *memRepo) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.rows[id]
	return ok, nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]Ad, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(params.Search)
	var matched []Ad
	for _, a := range m.rows {
		if params.AuthorID != nil && (a.AuthorID == nil || *a.AuthorID != *params.AuthorID) {
			continue
		}
		if needle != "" && !containsFold(a.Title, needle) && !containsFold(a.Description, needle) {
			continue
		}
		matched = append(matched, a)
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

func (m *memRepo) Update(_ context.Context, a *Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[a.ID]; !ok {
		return fmt.Errorf("update ad %d: %w", a.ID, core.ErrNotFound)
	}
	m.rows[a.ID] = *a
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return fmt.Errorf("delete ad %d: %w", id, core.ErrNotFound)
	}
	delete(m.rows, id)
	return nil
}

// orphan simulates the author's account being deleted.
func (m *memRepo) orphan(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, userID)
	for id, a := range m.rows {
		if a.AuthorID != nil && *a.AuthorID == userID {
			a.AuthorID = nil
			m.rows[id] = a
		}
	}
}

func containsFold(s *string, needle string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), needle)
}

func ptr[T any](v T) *T { return &v }
