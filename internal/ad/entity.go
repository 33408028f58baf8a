// AngelaMos | 2026
// entity.go

package ad

import (
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/authz"
)

// Ad is a classified listing. AuthorID is nil once the author's account has
// been deleted; the ad itself stays listed.
type Ad struct {
	ID          int64     `db:"id"`
	Title       *string   `db:"title"`
	Price       *int64    `db:"price"`
	Description *string   `db:"description"`
	AuthorID    *string   `db:"author_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (a *Ad) Target() *authz.Target {
	return &authz.Target{AuthorID: a.AuthorID}
}

func (a *Ad) IsOrphaned() bool {
	return a.AuthorID == nil
}
