package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/auth"
	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/service"
)

// BeerHandler handles beer listing, creation and comment submission.
type BeerHandler struct {
	beers     *service.BeerService
	templates *template.Template
	logger    zerolog.Logger
}

// NewBeerHandler creates a new beer handler.
func NewBeerHandler(beers *service.BeerService, templates *template.Template, logger zerolog.Logger) *BeerHandler {
	return &BeerHandler{
		beers:     beers,
		templates: templates,
		logger:    logger.With().Str("handler", "beer").Logger(),
	}
}

// BeerListData contains data for the beer index page.
type BeerListData struct {
	Title       string
	CurrentUser *domain.User
	Beers       []*domain.Beer
}

// BeerFormData contains data for the new-beer form.
type BeerFormData struct {
	Title       string
	Error       string
	Name        string
	ImageURL    string
	Description string
}

// BeerShowData contains data for the beer detail page.
type BeerShowData struct {
	Title       string
	CurrentUser *domain.User
	Beer        *domain.Beer
	Comments    []*domain.Comment
}

// handleList renders the beer index.
func (h *BeerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	beers, err := h.beers.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list beers")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	h.render(w, "beers.html", BeerListData{
		Title:       "Beers - Brewlog",
		CurrentUser: identity.User,
		Beers:       beers,
	})
}

// handleNewForm renders the new-beer form. The router only reaches it
// for authenticated requests.
func (h *BeerHandler) handleNewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "beer_new.html", BeerFormData{Title: "New Beer - Brewlog"})
}

// handleCreate creates a beer from the submitted form.
func (h *BeerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "beer_new.html", BeerFormData{
			Title: "New Beer - Brewlog",
			Error: "Invalid form data",
		})
		return
	}

	input := service.CreateBeerInput{
		Name:        r.FormValue("name"),
		ImageURL:    r.FormValue("image"),
		Description: r.FormValue("description"),
	}

	if _, err := h.beers.Create(r.Context(), input); err != nil {
		h.render(w, "beer_new.html", BeerFormData{
			Title:       "New Beer - Brewlog",
			Error:       beerErrorMessage(err),
			Name:        input.Name,
			ImageURL:    input.ImageURL,
			Description: input.Description,
		})
		return
	}

	http.Redirect(w, r, "/beers", http.StatusFound)
}

// handleShow renders a single beer with its comments in attach order.
func (h *BeerHandler) handleShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/beers", http.StatusFound)
		return
	}

	detail, err := h.beers.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrBeerNotFound) {
			h.logger.Error().Err(err).Int64("beer_id", id).Msg("failed to load beer")
		}
		http.Redirect(w, r, "/beers", http.StatusFound)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	h.render(w, "beer_show.html", BeerShowData{
		Title:       detail.Beer.Name + " - Brewlog",
		CurrentUser: identity.User,
		Beer:        detail.Beer,
		Comments:    detail.Comments,
	})
}

// handleAttachComment creates a comment on a beer. The router guards
// this route, so the identity is always present here.
func (h *BeerHandler) handleAttachComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/beers", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/beers/"+strconv.FormatInt(id, 10), http.StatusFound)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if identity.IsAnonymous() {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}

	_, err = h.beers.AttachComment(r.Context(), service.AttachCommentInput{
		BeerID:     id,
		Text:       r.FormValue("text"),
		AuthorID:   identity.User.ID,
		AuthorName: identity.User.Username,
	})
	if err != nil {
		if errors.Is(err, service.ErrBeerNotFound) {
			http.Redirect(w, r, "/beers", http.StatusFound)
			return
		}
		if !errors.Is(err, service.ErrCommentTextRequired) {
			h.logger.Error().Err(err).Int64("beer_id", id).Msg("failed to attach comment")
		}
		http.Redirect(w, r, "/beers/"+strconv.FormatInt(id, 10), http.StatusFound)
		return
	}

	http.Redirect(w, r, "/beers/"+strconv.FormatInt(id, 10), http.StatusFound)
}

func (h *BeerHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func beerErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrBeerNameRequired):
		return "Name is required"
	case errors.Is(err, service.ErrBeerImageRequired):
		return "Image URL is required"
	case errors.Is(err, service.ErrBeerDescriptionRequired):
		return "Description is required"
	default:
		return "Something went wrong, please try again"
	}
}
