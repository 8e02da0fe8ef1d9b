package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/naija-emoji/apiserver/internal/services"
	"github.com/naija-emoji/apiserver/types"
)

const (
	maxBodyBytes       = 1 << 20
	maxMultipartMemory = 1 << 20

	msgProcessingError = "Error processing request."
)

type contextKey string

const (
	contextUserKey  contextKey = "user"
	contextTokenKey contextKey = "token"
)

// MessageResponse is the body of every non-resource response.
type MessageResponse struct {
	Message string `json:"message"`
}

func withSession(ctx context.Context, user types.User, token string) context.Context {
	ctx = context.WithValue(ctx, contextUserKey, user)
	return context.WithValue(ctx, contextTokenKey, token)
}

func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextTokenKey).(string)
	return token
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeError maps err to a client message. Errors without a client facing
// meaning are logged and reported with fallback.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var inputErr *services.InputError
	switch {
	case errors.As(err, &inputErr):
		writeMessage(w, http.StatusBadRequest, inputErr.Error())
	case errors.Is(err, errBadBody):
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
	case errors.Is(err, services.ErrConflict):
		writeMessage(w, http.StatusBadRequest, "User already exists.")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid login credentials.")
	case errors.Is(err, services.ErrNoToken):
		writeMessage(w, http.StatusBadRequest, "No token provided.")
	case errors.Is(err, services.ErrInvalidToken):
		writeMessage(w, http.StatusBadRequest, "invalid token.")
	case errors.Is(err, services.ErrExpiredToken):
		writeMessage(w, http.StatusBadRequest, "expired token.")
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusBadRequest, fallback)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeMessage(w, http.StatusBadRequest, fallback)
	}
}

var errBadBody = errors.New("invalid request body")

// parseFields reads the submitted form values. urlencoded and multipart
// forms are accepted, as is a flat JSON object of strings. Only the first
// value of a repeated form key is kept.
func parseFields(w http.ResponseWriter, r *http.Request) (services.Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return parseJSONFields(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, errBadBody
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, errBadBody
		}
	}
	return formFields(r.PostForm), nil
}

func parseJSONFields(r *http.Request) (services.Fields, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errBadBody
	}
	fields := make(services.Fields, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, errBadBody
		}
		fields[key] = s
	}
	return fields, nil
}

func formFields(values url.Values) services.Fields {
	fields := make(services.Fields, len(values))
	for key, list := range values {
		if len(list) > 0 {
			fields[key] = list[0]
		}
	}
	return fields
}

func parseEmojiID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil || id < 1 {
		return 0, errors.New("invalid emoji id")
	}
	return id, nil
}

// pathParam returns the decoded value of a route parameter.
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
