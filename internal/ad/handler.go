// AngelaMos | 2026
// handler.go

package ad

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

// RegisterRoutes mounts the ad endpoints on a router already scoped to /ads
// and already running optional authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/create/", h.Create)
	r.Get("/my_ads/", h.ListMine)
	r.Get("/{id:[0-9]+}/", h.Get)
	r.Put("/{id:[0-9]+}/update/", h.Replace)
	r.Patch("/{id:[0-9]+}/update/", h.Patch)
	r.Delete("/{id:[0-9]+}/delete/", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, mine bool) {
	p := middleware.GetPrincipal(r.Context())
	if mine && p == nil {
		WriteError(w, core.ErrUnauthorized)
		return
	}

	page, err := h.paginator.Params(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	params := ListParams{
		PageParams: page,
		Search:     r.URL.Query().Get("search"),
	}

	var (
		ads   []Ad
		total int
	)
	if mine {
		ads, total, err = h.service.ListMine(r.Context(), p, params)
	} else {
		ads, total, err = h.service.List(r.Context(), p, params)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	core.Paginated(w, r, page, ToAdResponseList(ads), total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		WriteError(w, core.ErrUnauthorized)
		return
	}

	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, ToAdResponse(a))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		WriteError(w, core.ErrUnauthorized)
		return
	}

	var req AdRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	a, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.Created(w, ToAdResponse(a))
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, replace bool) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		WriteError(w, core.ErrUnauthorized)
		return
	}

	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}

	var req AdRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	a, err := h.service.Update(r.Context(), p, id, req, replace)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, ToAdResponse(a))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		WriteError(w, core.ErrUnauthorized)
		return
	}

	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		WriteError(w, err)
		return
	}

	core.NoContent(w)
}

// PathID parses a numeric chi path parameter. Values that overflow int64 can
// never name a row, so they answer 404.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		core.NotFoundMessage(w, "not found")
		return 0, false
	}
	return id, true
}

// WriteError maps service errors onto the wire taxonomy shared by the ad and
// feedback endpoints.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication credentials were not provided")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have permission to perform this action")
	case errors.Is(err, core.ErrInvalidPage):
		core.NotFoundMessage(w, "invalid page")
	case errors.Is(err, ErrAdMissing):
		core.NotFoundMessage(w, "the requested ad does not exist")
	case errors.Is(err, core.ErrNotFound):
		core.NotFoundMessage(w, "not found")
	default:
		core.InternalServerError(w, err)
	}
}
