// AngelaMos | 2026
// dto.go

package ad

import (
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// AdRequest is the writable subset of an ad. There is no author or
// created_at field: the server owns both, and unknown JSON keys are dropped
// on decode.
type AdRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=50"`
	Price       *int64  `json:"price"`
	Description *string `json:"description" validate:"omitempty,max=50"`
}

// Apply copies the request onto an existing ad. With replace every writable
// field is overwritten, absent ones becoming null; otherwise only the fields
// present in the body change.
func (req AdRequest) Apply(a *Ad, replace bool) {
	if replace {
		a.Title = req.Title
		a.Price = req.Price
		a.Description = req.Description
		return
	}

	if req.Title != nil {
		a.Title = req.Title
	}
	if req.Price != nil {
		a.Price = req.Price
	}
	if req.Description != nil {
		a.Description = req.Description
	}
}

type AdResponse struct {
	ID          int64     `json:"id"`
	Title       *string   `json:"title"`
	Price       *int64    `json:"price"`
	Description *string   `json:"description"`
	Author      *string   `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListParams narrows an ad listing. AuthorID restricts to one author's ads;
// Search matches title or description case-insensitively.
type ListParams struct {
	core.PageParams
	Search   string
	AuthorID *string
}

func ToAdResponse(a *Ad) AdResponse {
	return AdResponse{
		ID:          a.ID,
		Title:       a.Title,
		Price:       a.Price,
		Description: a.Description,
		Author:      a.AuthorID,
		CreatedAt:   a.CreatedAt,
	}
}

func ToAdResponseList(ads []Ad) []AdResponse {
	out := make([]AdResponse, 0, len(ads))
	for i := range ads {
		out = append(out, ToAdResponse(&ads[i]))
	}
	return out
}
