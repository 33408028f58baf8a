// AngelaMos | 2026
// service_test.go

package ad

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/callboard/internal/authz"
	"github.com/carterperez-dev/templates/callboard/internal/core"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
	adminID = "33333333-3333-3333-3333-333333333333"
)

var (
	alice = &authz.Principal{UserID: aliceID, Role: "user"}
	bob   = &authz.Principal{UserID: bobID, Role: "user"}
	root  = &authz.Principal{UserID: adminID, Role: authz.RoleAdmin}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo(aliceID, bobID, adminID)
	return NewService(repo, discardLogger()), repo
}

func page(n, size int) ListParams {
	return ListParams{PageParams: core.PageParams{Page: n, PageSize: size}}
}

func TestCreate_StampsAuthor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, alice, AdRequest{
		Title:       ptr("Тестовое объявление №1"),
		Price:       ptr(int64(500)),
		Description: ptr("Тестовое описание объявления №1"),
	})
	require.NoError(t, err)

	require.NotNil(t, a.AuthorID)
	assert.Equal(t, aliceID, *a.AuthorID)
	assert.Equal(t, "Тестовое объявление №1", *a.Title)
	assert.Equal(t, int64(500), *a.Price)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCreate_Anonymous(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), nil, AdRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCreate_AuthorAccountGone(t *testing.T) {
	svc, repo := newTestService()
	repo.orphan(bobID)

	_, err := svc.Create(context.Background(), bob, AdRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestUpdateDelete_OwnershipRules(t *testing.T) {
	tests := []struct {
		name    string
		caller  *authz.Principal
		wantErr error
	}{
		{"author", alice, nil},
		{"admin", root, nil},
		{"other user", bob, core.ErrForbidden},
		{"anonymous", nil, core.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			ctx := context.Background()

			a, err := svc.Create(ctx, alice, AdRequest{Title: ptr("bike"), Price: ptr(int64(10))})
			require.NoError(t, err)

			updated, err := svc.Update(ctx, tt.caller, a.ID, AdRequest{Price: ptr(int64(20))}, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(20), *updated.Price)
				assert.Equal(t, "bike", *updated.Title)
				assert.Equal(t, aliceID, *updated.AuthorID)
			}

			err = svc.Delete(ctx, tt.caller, a.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				_, err = svc.Get(ctx, alice, a.ID)
				assert.ErrorIs(t, err, core.ErrNotFound)
			}
		})
	}
}

func TestUpdate_ReplaceClearsAbsentFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, alice, AdRequest{
		Title:       ptr("bike"),
		Price:       ptr(int64(10)),
		Description: ptr("red"),
	})
	require.NoError(t, err)

	replaced, err := svc.Update(ctx, alice, a.ID, AdRequest{Title: ptr("car")}, true)
	require.NoError(t, err)

	assert.Equal(t, "car", *replaced.Title)
	assert.Nil(t, replaced.Price)
	assert.Nil(t, replaced.Description)
	assert.Equal(t, aliceID, *replaced.AuthorID)
}

func TestAnonymousSeesUnauthorizedBeforeNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Get(ctx, nil, 999)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Update(ctx, nil, 999, AdRequest{}, false)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	assert.ErrorIs(t, svc.Delete(ctx, nil, 999), core.ErrUnauthorized)

	_, err = svc.Get(ctx, alice, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrphanedAd(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, bob, AdRequest{Title: ptr("lamp")})
	require.NoError(t, err)
	repo.orphan(bobID)

	got, err := svc.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOrphaned())

	ads, total, err := svc.List(ctx, nil, page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Nil(t, ads[0].AuthorID)

	_, err = svc.Update(ctx, alice, a.ID, AdRequest{Title: ptr("mine now")}, false)
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, root, a.ID))
}

func TestListMine_ScopedToCaller(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, p := range []*authz.Principal{alice, bob, alice} {
		_, err := svc.Create(ctx, p, AdRequest{Title: ptr("item")})
		require.NoError(t, err)
	}

	mine, total, err := svc.ListMine(ctx, alice, page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, a := range mine {
		assert.Equal(t, aliceID, *a.AuthorID)
	}

	filter := page(1, 10)
	filter.AuthorID = ptr(bobID)
	mine, total, err = svc.ListMine(ctx, alice, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "caller scope overrides any author filter")
	assert.Equal(t, aliceID, *mine[0].AuthorID)

	_, _, err = svc.ListMine(ctx, nil, page(1, 10))
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestList_PublicSearchAndOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, alice, AdRequest{Title: ptr("Red bicycle")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, AdRequest{Title: ptr("Sofa"), Description: ptr("like new")})
	require.NoError(t, err)
	last, err := svc.Create(ctx, bob, AdRequest{Description: ptr("kids BICYCLE")})
	require.NoError(t, err)

	all, total, err := svc.List(ctx, nil, page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, last.ID, all[0].ID, "newest first")

	params := page(1, 10)
	params.Search = "bicycle"
	found, total, err := svc.List(ctx, nil, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, last.ID, found[0].ID)
	assert.Equal(t, first.ID, found[1].ID)
}
