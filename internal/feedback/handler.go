// AngelaMos | 2026
// handler.go

package feedback

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/core"
	"github.com/carterperez-dev/templates/callboard/internal/middleware"
)

type Handler struct {
	service   *Service
	paginator core.Paginator
	validator *validator.Validate
}

func NewHandler(service *Service, paginator core.Paginator) *Handler {
	return &Handler{
		service:   service,
		paginator: paginator,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the feedback endpoints next to the ad endpoints on
// the /ads router. Every route here requires a principal.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/{id:[0-9]+}/feedbacks/", h.ListByAd)
	r.Post("/{id:[0-9]+}/feedbacks/create/", h.Create)
	r.Get("/my_list_feedbacks/", h.ListMine)
	r.Get("/feedbacks/{id:[0-9]+}/", h.Get)
	r.Put("/feedbacks/{id:[0-9]+}/update/", h.Replace)
	r.Patch("/feedbacks/{id:[0-9]+}/update/", h.Patch)
	r.Delete("/feedbacks/{id:[0-9]+}/delete/", h.Delete)
}

// principalOr401 writes 401 and reports false for anonymous callers, ahead of any
// path or body parsing.
func principalOr401(w http.ResponseWriter, r *http.Request) bool {
	if middleware.GetPrincipal(r.Context()) == nil {
		ad.WriteError(w, core.ErrUnauthorized)
		return false
	}
	return true
}

func (h *Handler) ListByAd(w http.ResponseWriter, r *http.Request) {
	if !principalOr401(w, r) {
		return
	}

	adID, ok := ad.PathID(w, r, "id")
	if !ok {
		return
	}

	page, err := h.paginator.Params(r)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	items, total, err := h.service.ListByAd(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		page,
	)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	core.Paginated(w, r, page, ToFeedbackResponseList(items), total)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	if !principalOr401(w, r) {
		return
	}

	page, err := h.paginator.Params(r)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	items, total, err := h.service.ListMine(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		page,
	)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	core.Paginated(w, r, page, ToFeedbackResponseList(items), total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !principalOr401(w, r) {
		return
	}

	id, ok := ad.PathID(w, r, "id")
	if !ok {
		return
	}

	f, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	core.OK(w, ToFeedbackResponse(f))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !principalOr401(w, r) {
		return
	}

	adID, ok := ad.PathID(w, r, "id")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	f, err := h.service.Create(r.Context(), middleware.GetPrincipal(r.Context()), adID, req)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	core.Created(w, ToFeedbackResponse(f))
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, replace bool) {
	if !principalOr401(w, r) {
		return
	}

	id, ok := ad.PathID(w, r, "id")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	f, err := h.service.Update(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		id,
		req,
		replace,
	)
	if err != nil {
		ad.WriteError(w, err)
		return
	}

	core.OK(w, ToFeedbackResponse(f))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !principalOr401(w, r) {
		return
	}

	id, ok := ad.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetPrincipal(r.Context()), id); err != nil {
		ad.WriteError(w, err)
		return
	}

	core.NoContent(w)
}
