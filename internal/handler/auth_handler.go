// Package handler provides HTTP handlers for Brewlog.
package handler

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users     *service.UserService
	sessions  *service.SessionService
	templates *template.Template

	cookieName   string
	cookieSecure bool
	sessionTTL   time.Duration

	logger zerolog.Logger
}

// AuthHandlerConfig contains configuration for the auth handler.
type AuthHandlerConfig struct {
	Users        *service.UserService
	Sessions     *service.SessionService
	Templates    *template.Template
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
	Logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		users:        cfg.Users,
		sessions:     cfg.Sessions,
		templates:    cfg.Templates,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		sessionTTL:   cfg.SessionTTL,
		logger:       cfg.Logger.With().Str("handler", "auth").Logger(),
	}
}

// AuthPageData contains data for the register and login pages. Username
// carries the re-entered form value, not the current identity.
type AuthPageData struct {
	Title    string
	Username string
	Error    string
}

// handleRegisterPage renders the registration form.
func (h *AuthHandler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", AuthPageData{Title: "Sign Up - Brewlog"})
}

// handleRegister creates the account and logs the new user straight in.
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "register.html", AuthPageData{
			Title: "Sign Up - Brewlog",
			Error: "Invalid form data",
		})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		h.render(w, "register.html", AuthPageData{
			Title:    "Sign Up - Brewlog",
			Username: username,
			Error:    registerErrorMessage(err),
		})
		return
	}

	// Auto-login after registration.
	session, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		// Account exists but the session could not be issued; send the
		// user through the normal login flow instead of failing the page.
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("auto-login failed after registration")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.setSessionCookie(w, r, session.Token)
	http.Redirect(w, r, "/beers", http.StatusFound)
}

// handleLoginPage renders the login form.
func (h *AuthHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", AuthPageData{Title: "Log In - Brewlog"})
}

// handleLogin verifies credentials and issues a session.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", AuthPageData{
			Title: "Log In - Brewlog",
			Error: "Invalid form data",
		})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		// One message for every failure mode.
		h.render(w, "login.html", AuthPageData{
			Title:    "Log In - Brewlog",
			Username: username,
			Error:    "Invalid username or password",
		})
		return
	}

	session, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create session")
		h.render(w, "login.html", AuthPageData{
			Title:    "Log In - Brewlog",
			Username: username,
			Error:    "Something went wrong, please try again",
		})
		return
	}

	h.setSessionCookie(w, r, session.Token)
	http.Redirect(w, r, "/beers", http.StatusFound)
}

// handleLogout destroys the session and clears the cookie.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		h.sessions.Destroy(r.Context(), cookie.Value)
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/beers", http.StatusFound)
}

// setSessionCookie delivers the session token to the client.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL / time.Second),
	})
}

// clearSessionCookie expires the session cookie.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// render writes a template, degrading to a 500 on failure.
func (h *AuthHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// registerErrorMessage maps registration errors to user-facing text.
func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists), errors.Is(err, domain.ErrUserAlreadyExists):
		return "That username is already taken"
	case errors.Is(err, service.ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, service.ErrUsernameTooLong):
		return "Username is too long"
	case errors.Is(err, service.ErrPasswordRequired):
		return "Password is required"
	default:
		return "Something went wrong, please try again"
	}
}
