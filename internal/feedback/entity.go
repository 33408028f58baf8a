// AngelaMos | 2026
// entity.go

package feedback

import (
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/authz"
)

// Feedback is a comment left on an ad. Both references go null when the
// author account or the ad is deleted.
type Feedback struct {
	ID        int64     `db:"id"`
	Text      *string   `db:"text"`
	AuthorID  *string   `db:"author_id"`
	AdID      *int64    `db:"ad_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (f *Feedback) Target() *authz.Target {
	return &authz.Target{AuthorID: f.AuthorID}
}
