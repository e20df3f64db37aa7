package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/auth"
	"github.com/tapline/brewlog/internal/metrics"
	"github.com/tapline/brewlog/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// RouterConfig contains everything the HTTP router needs.
type RouterConfig struct {
	Users    *service.UserService
	Sessions *service.SessionService
	Beers    *service.BeerService
	Metrics  *metrics.Metrics

	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration

	Logger zerolog.Logger

	// Health reports backend connectivity for the health endpoint.
	Health func(r *http.Request) error
}

// NewRouter builds the HTTP route table.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(AuthHandlerConfig{
		Users:        cfg.Users,
		Sessions:     cfg.Sessions,
		Templates:    templates,
		CookieName:   cfg.CookieName,
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.SessionTTL,
		Logger:       cfg.Logger,
	})
	beerHandler := NewBeerHandler(cfg.Beers, templates, cfg.Logger)

	r := chi.NewRouter()

	r.Use(Recoverer(cfg.Logger))
	r.Use(RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(chimiddleware.RealIP)
	r.Use(auth.Identify(cfg.Sessions, cfg.Users, cfg.CookieName, cfg.Logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/beers", http.StatusFound)
	})

	r.Get("/register", authHandler.handleRegisterPage)
	r.Post("/register", authHandler.handleRegister)
	r.Get("/login", authHandler.handleLoginPage)
	r.Post("/login", authHandler.handleLogin)
	r.Get("/logout", authHandler.handleLogout)

	r.Get("/beers", beerHandler.handleList)
	r.With(auth.RequireUser).Get("/beers/new", beerHandler.handleNewForm)
	// TODO: gate this behind auth.RequireUser; the form page already is,
	// but a direct POST still creates a beer anonymously.
	r.Post("/beers", beerHandler.handleCreate)
	r.Get("/beers/{id}", beerHandler.handleShow)
	r.With(auth.RequireUser).Post("/beers/{id}/comments", beerHandler.handleAttachComment)

	r.Get("/health", handleHealth(cfg.Health))

	return r, nil
}

// handleHealth reports service health as JSON.
func handleHealth(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if check != nil {
			if err := check(r); err != nil {
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
