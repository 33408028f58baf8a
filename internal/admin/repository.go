// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// ContentCounter reports table-level counts for the admin dashboard.
type ContentCounter interface {
	ContentStats(ctx context.Context) (*ContentStats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) ContentCounter {
	return &repository{db: db}
}

func (r *repository) ContentStats(ctx context.Context) (*ContentStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)                                AS users,
			(SELECT COUNT(*) FROM users WHERE role = 'admin')           AS admins,
			(SELECT COUNT(*) FROM ads)                                  AS ads,
			(SELECT COUNT(*) FROM ads WHERE author_id IS NULL)          AS orphaned_ads,
			(SELECT COUNT(*) FROM feedbacks)                            AS feedbacks,
			(SELECT COUNT(*) FROM feedbacks WHERE author_id IS NULL)    AS orphaned_feedbacks,
			(SELECT COUNT(*) FROM feedbacks WHERE ad_id IS NULL)        AS detached_feedbacks`

	var stats ContentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("content stats: %w", err)
	}

	return &stats, nil
}
