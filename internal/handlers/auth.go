package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/naija-emoji/apiserver/internal/services"
)

// TokenHeader is the request header carrying the session token.
const TokenHeader = "Token"

// AuthHandler provides registration, login and logout endpoints.
type AuthHandler struct {
	auth   *services.AuthService
	logger *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(auth *services.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService, logger *slog.Logger) {
	handler := NewAuthHandler(auth, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(handler.RequireToken).Get("/logout", handler.Logout)
}

// RequireToken constructs the token gate for other routers.
func RequireToken(auth *services.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return NewAuthHandler(auth, logger).RequireToken
}

// RequireToken resolves the Token header to a user and stores both in the
// request context.
func (h *AuthHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r)
		if err != nil {
			writeError(w, r, h.logger, err, msgProcessingError)
			return
		}

		user, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, h.logger, err, msgProcessingError)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), user, token)))
	})
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	fields, err := parseFields(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, "Error registering user.")
		return
	}

	if err := h.auth.Register(r.Context(), fields); err != nil {
		writeError(w, r, h.logger, err, "Error registering user.")
		return
	}

	writeMessage(w, http.StatusCreated, "User successfully registered.")
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := parseFields(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, msgProcessingError)
		return
	}

	session, err := h.auth.Login(r.Context(), fields)
	if err != nil {
		writeError(w, r, h.logger, err, msgProcessingError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		Token:   session.Token,
		Expires: session.ExpiresAt.Unix(),
	})
}

// Logout clears the caller's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err, "error logging out.")
		return
	}
	writeMessage(w, http.StatusOK, "successfully logged out.")
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// tokenFromRequest requires exactly one non-blank Token header value.
func tokenFromRequest(r *http.Request) (string, error) {
	values := r.Header.Values(TokenHeader)
	if len(values) != 1 {
		return "", services.ErrNoToken
	}
	token := strings.TrimSpace(values[0])
	if token == "" {
		return "", services.ErrNoToken
	}
	return token, nil
}
