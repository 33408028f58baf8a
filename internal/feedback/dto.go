// AngelaMos | 2026
// dto.go

package feedback

import (
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// FeedbackRequest carries only the text. Author and ad come from the
// principal and the URL.
type FeedbackRequest struct {
	Text *string `json:"text" validate:"omitempty,max=50"`
}

func (req FeedbackRequest) Apply(f *Feedback, replace bool) {
	if replace || req.Text != nil {
		f.Text = req.Text
	}
}

type FeedbackResponse struct {
	ID        int64     `json:"id"`
	Text      *string   `json:"text"`
	Author    *string   `json:"author"`
	Ad        *int64    `json:"ad"`
	CreatedAt time.Time `json:"created_at"`
}

type ListParams struct {
	core.PageParams
	AdID     *int64
	AuthorID *string
}

func ToFeedbackResponse(f *Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		Text:      f.Text,
		Author:    f.AuthorID,
		Ad:        f.AdID,
		CreatedAt: f.CreatedAt,
	}
}

func ToFeedbackResponseList(items []Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for i := range items {
		out = append(out, ToFeedbackResponse(&items[i]))
	}
	return out
}
