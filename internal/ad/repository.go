// AngelaMos | 2026
// repository.go

package ad

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, a *Ad) error
	GetByID(ctx context.Context, id int64) (*Ad, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, params ListParams) ([]Ad, int, error)
	Update(ctx context.Context, a *Ad) error
	Delete(ctx context.Context, id int64) error
}

const adColumns = `id, title, price, description, author_id, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts the ad with its author already set, so the stamped author
// and the server-assigned created_at land in one statement.
func (r *repository) Create(ctx context.Context, a *Ad) error {
	query := `
		INSERT INTO ads (title, price, description, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		a.Title,
		a.Price,
		a.Description,
		a.AuthorID,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create ad: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE id = $1`

	var a Ad
	err := r.db.GetContext(ctx, &a, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get ad %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ad %d: %w", id, err)
	}

	return &a, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM ads WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check ad %d: %w", id, err)
	}
	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Ad, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIdx))
		args = append(args, *params.AuthorID)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM ads "+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count ads: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM ads
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		adColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Limit(), params.Offset())

	var ads []Ad
	if err := r.db.SelectContext(ctx, &ads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ads: %w", err)
	}

	return ads, total, nil
}

func (r *repository) Update(ctx context.Context, a *Ad) error {
	query := `
		UPDATE ads
		SET title = $2, price = $3, description = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Title,
		a.Price,
		a.Description,
	)
	if err != nil {
		return fmt.Errorf("update ad %d: %w", a.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ad %d: %w", a.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update ad %d: %w", a.ID, core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ad %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ad %d: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete ad %d: %w", id, core.ErrNotFound)
	}

	return nil
}
