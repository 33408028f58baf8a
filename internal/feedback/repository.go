// AngelaMos | 2026
// repository.go

package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id int64) (*Feedback, error)
	List(ctx context.Context, params ListParams) ([]Feedback, int, error)
	Update(ctx context.Context, f *Feedback) error
	Delete(ctx context.Context, id int64) error
}

const feedbackColumns = `id, text, author_id, ad_id, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedbacks (text, author_id, ad_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, f.Text, f.AuthorID, f.AdID).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create feedback: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE id = $1`

	var f Feedback
	err := r.db.GetContext(ctx, &f, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get feedback %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback %d: %w", id, err)
	}

	return &f, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Feedback, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.AdID != nil {
		conditions = append(conditions, fmt.Sprintf("ad_id = $%d", argIdx))
		args = append(args, *params.AdID)
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
		"SELECT COUNT(*) FROM feedbacks "+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM feedbacks
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		feedbackColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Limit(), params.Offset())

	var items []Feedback
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}

	return items, total, nil
}

func (r *repository) Update(ctx context.Context, f *Feedback) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE feedbacks SET text = $2 WHERE id = $1`, f.ID, f.Text)
	if err != nil {
		return fmt.Errorf("update feedback %d: %w", f.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update feedback %d: %w", f.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update feedback %d: %w", f.ID, core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete feedback %d: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete feedback %d: %w", id, core.ErrNotFound)
	}

	return nil
}
