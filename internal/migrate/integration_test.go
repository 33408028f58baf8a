//go:build integration

// AngelaMos | 2026
// integration_test.go

package migrate_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/admin"
	"github.com/carterperez-dev/templates/callboard/internal/auth"
	"github.com/carterperez-dev/templates/callboard/internal/config"
	"github.com/carterperez-dev/templates/callboard/internal/core"
	"github.com/carterperez-dev/templates/callboard/internal/feedback"
	"github.com/carterperez-dev/templates/callboard/internal/migrate"
	"github.com/carterperez-dev/templates/callboard/internal/user"
)

func setupDatabase(t *testing.T) *core.Database {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("callboard"),
		postgres.WithUsername("callboard"),
		postgres.WithPassword("callboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrate.New(db.DB, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	require.Equal(t, len(m.Migrations()), applied)

	return db
}

func TestPostgres(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()

	users := user.NewRepository(db.DB)
	ads := ad.NewRepository(db.DB)
	feedbacks := feedback.NewRepository(db.DB)
	tokens := auth.NewRepository(db.DB)
	content := admin.NewRepository(db.DB)

	newUser := func(t *testing.T, email, role string) *user.User {
		t.Helper()
		u := &user.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: "hash",
			Role:         role,
		}
		require.NoError(t, users.Create(ctx, u))
		return u
	}

	newAd := func(t *testing.T, authorID, title string) *ad.Ad {
		t.Helper()
		price := int64(1500)
		a := &ad.Ad{Title: &title, Price: &price, AuthorID: &authorID}
		require.NoError(t, ads.Create(ctx, a))
		return a
	}

	t.Run("migrations are idempotent", func(t *testing.T) {
		m, err := migrate.New(db.DB, slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)

		applied, err := m.Up(ctx)
		require.NoError(t, err)
		assert.Zero(t, applied)

		status, err := m.Status(ctx)
		require.NoError(t, err)
		for _, s := range status {
			assert.NotNil(t, s.AppliedAt, s.Name)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		newUser(t, "dup@example.com", user.RoleUser)

		err := users.Create(ctx, &user.User{
			ID:           uuid.New().String(),
			Email:        "dup@example.com",
			PasswordHash: "hash",
			Role:         user.RoleUser,
		})
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	t.Run("ad for missing author", func(t *testing.T) {
		ghost := uuid.New().String()
		title := "Велосипед"
		err := ads.Create(ctx, &ad.Ad{Title: &title, AuthorID: &ghost})
		assert.ErrorIs(t, err, core.ErrForeignKey)
	})

	t.Run("search and order", func(t *testing.T) {
		author := newUser(t, "seller@example.com", user.RoleUser)
		older := newAd(t, author.ID, "Продам ВЕЛОСИПЕД")
		newer := newAd(t, author.ID, "велосипед детский")
		newAd(t, author.ID, "Диван")

		found, total, err := ads.List(ctx, ad.ListParams{
			PageParams: core.PageParams{Page: 1, PageSize: 10},
			Search:     "Велосипед",
			AuthorID:   &author.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, found, 2)
		assert.Equal(t, newer.ID, found[0].ID)
		assert.Equal(t, older.ID, found[1].ID)

		none, total, err := ads.List(ctx, ad.ListParams{
			PageParams: core.PageParams{Page: 1, PageSize: 10},
			Search:     "100%_off",
		})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, none)
	})

	t.Run("deleting a user orphans content", func(t *testing.T) {
		author := newUser(t, "leaving@example.com", user.RoleUser)
		a := newAd(t, author.ID, "Шкаф")

		text := "Ещё продаётся?"
		f := &feedback.Feedback{Text: &text, AuthorID: &author.ID, AdID: &a.ID}
		require.NoError(t, feedbacks.Create(ctx, f))

		require.NoError(t, tokens.Create(ctx, &auth.RefreshToken{
			ID:        uuid.New().String(),
			UserID:    author.ID,
			TokenHash: core.HashToken(uuid.New().String()),
			FamilyID:  uuid.New().String(),
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		require.NoError(t, users.Delete(ctx, author.ID))

		kept, err := ads.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, kept.IsOrphaned())

		keptFeedback, err := feedbacks.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Nil(t, keptFeedback.AuthorID)

		sessions, err := tokens.ActiveSessions(ctx, author.ID)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("deleting an ad detaches feedback", func(t *testing.T) {
		author := newUser(t, "detach@example.com", user.RoleUser)
		a := newAd(t, author.ID, "Стол")

		text := "Отличный стол"
		f := &feedback.Feedback{Text: &text, AuthorID: &author.ID, AdID: &a.ID}
		require.NoError(t, feedbacks.Create(ctx, f))

		require.NoError(t, ads.Delete(ctx, a.ID))

		exists, err := ads.Exists(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		kept, err := feedbacks.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Nil(t, kept.AdID)

		missing := a.ID
		err = feedbacks.Create(ctx, &feedback.Feedback{Text: &text, AuthorID: &author.ID, AdID: &missing})
		assert.ErrorIs(t, err, core.ErrForeignKey)
	})

	t.Run("content stats", func(t *testing.T) {
		newUser(t, "root@example.com", user.RoleAdmin)

		stats, err := content.ContentStats(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.Admins, int64(1))
		assert.GreaterOrEqual(t, stats.OrphanedAds, int64(1))
		assert.GreaterOrEqual(t, stats.OrphanedFeedbacks, int64(1))
		assert.GreaterOrEqual(t, stats.DetachedFeedbacks, int64(1))
		assert.GreaterOrEqual(t, stats.Users, stats.Admins)
	})

	t.Run("session rotation happens once", func(t *testing.T) {
		owner := newUser(t, "rotate@example.com", user.RoleUser)
		first := &auth.RefreshToken{
			ID:        uuid.New().String(),
			UserID:    owner.ID,
			TokenHash: core.HashToken(uuid.New().String()),
			FamilyID:  uuid.New().String(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, tokens.Create(ctx, first))

		next := &auth.RefreshToken{
			ID:        uuid.New().String(),
			TokenHash: core.HashToken(uuid.New().String()),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, tokens.Rotate(ctx, first.ID, next))
		assert.Equal(t, owner.ID, next.UserID)
		assert.Equal(t, first.FamilyID, next.FamilyID)

		retired, err := tokens.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, retired.IsUsed)
		require.NotNil(t, retired.ReplacedByID)
		assert.Equal(t, next.ID, *retired.ReplacedByID)

		again := &auth.RefreshToken{
			ID:        uuid.New().String(),
			TokenHash: core.HashToken(uuid.New().String()),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.ErrorIs(t, tokens.Rotate(ctx, first.ID, again), core.ErrNotFound)

		sessions, err := tokens.ActiveSessions(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, next.ID, sessions[0].ID)
	})

	t.Run("prune expired sessions", func(t *testing.T) {
		owner := newUser(t, "sessions@example.com", user.RoleUser)
		require.NoError(t, tokens.Create(ctx, &auth.RefreshToken{
			ID:        uuid.New().String(),
			UserID:    owner.ID,
			TokenHash: core.HashToken(uuid.New().String()),
			FamilyID:  uuid.New().String(),
			ExpiresAt: time.Now().Add(-72 * time.Hour),
		}))

		n, err := tokens.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))
	})
}
