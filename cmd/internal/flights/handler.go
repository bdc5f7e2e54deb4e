package flights

import (
	"errors"
	"net/http"
	"time"

	"avian/cmd/identity"
	"avian/cmd/internal/web"

	"github.com/go-chi/chi/v5"
)

const (
	MsgCreated  = "Successfully made a new flight!"
	MsgNotFound = "Cannot find that flight!"

	// departsLayout matches the value of an HTML datetime-local input.
	departsLayout = "2006-01-02T15:04"
)

// Handler serves the flight pages. Every page except the home page passes
// through guard.
type Handler struct {
	store       Store
	renderer    web.Renderer
	guard       func(web.HandlerFunc) web.HandlerFunc
	currentUser func(*http.Request) *identity.Principal
}

func NewHandler(store Store, renderer web.Renderer, guard func(web.HandlerFunc) web.HandlerFunc, currentUser func(*http.Request) *identity.Principal) *Handler {
	if renderer == nil {
		renderer = web.JSONRenderer{}
	}
	if guard == nil {
		guard = func(h web.HandlerFunc) web.HandlerFunc { return h }
	}
	return &Handler{store: store, renderer: renderer, guard: guard, currentUser: currentUser}
}

func (h *Handler) Register(rt *web.Router) {
	rt.Get("/", h.handleHome)
	rt.Route("/flights", func(r *web.Router) {
		r.Get("/", h.guard(h.handleList))
		r.Post("/", h.guard(h.handleCreate))
		r.Get("/new", h.guard(h.handleNew))
		r.Get("/{id}", h.guard(h.handleShow))
	})
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) error {
	return h.renderer.Render(w, r, http.StatusOK, "home", nil)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) error {
	list, err := h.store.List(r.Context())
	if err != nil {
		return err
	}
	return h.renderer.Render(w, r, http.StatusOK, "flights/index", list)
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) error {
	return h.renderer.Render(w, r, http.StatusOK, "flights/new", nil)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) error {
	f, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		web.Flash(r, web.FlashError, MsgNotFound)
		web.Redirect(w, r, "/flights")
		return nil
	}
	if err != nil {
		return err
	}
	return h.renderer.Render(w, r, http.StatusOK, "flights/show", f)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		web.Flash(r, web.FlashError, "Could not read the flight form.")
		web.Redirect(w, r, "/flights/new")
		return nil
	}

	in := Input{
		Airline:     r.PostForm.Get("airline"),
		Number:      r.PostForm.Get("number"),
		Origin:      r.PostForm.Get("origin"),
		Destination: r.PostForm.Get("destination"),
	}
	if raw := r.PostForm.Get("departs_at"); raw != "" {
		t, err := time.Parse(departsLayout, raw)
		if err != nil {
			return h.rejectCreate(w, r, ValidationError{Field: "departs_at", Msg: "must be a date and time"})
		}
		in.DepartsAt = t
	}
	if h.currentUser != nil {
		if p := h.currentUser(r); p != nil {
			in.CreatedBy = p.ID
		}
	}

	f, err := h.store.Create(r.Context(), in)
	var ve ValidationError
	if errors.As(err, &ve) {
		return h.rejectCreate(w, r, ve)
	}
	if err != nil {
		return err
	}
	web.Flash(r, web.FlashSuccess, MsgCreated)
	web.Redirect(w, r, "/flights/"+f.ID)
	return nil
}

func (h *Handler) rejectCreate(w http.ResponseWriter, r *http.Request, ve ValidationError) error {
	web.Flash(r, web.FlashError, "Flight "+ve.Field+" "+ve.Msg+".")
	web.Redirect(w, r, "/flights/new")
	return nil
}
