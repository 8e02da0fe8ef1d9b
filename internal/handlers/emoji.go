package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/naija-emoji/apiserver/internal/services"
	"github.com/naija-emoji/apiserver/types"
)

const (
	msgEmojiNotFound = "no emoji found"
	msgAddError      = "Error adding emoji."
	msgUpdateError   = "Error updating emoji."
	msgDeleteError   = "Error deleting emoji."
)

// EmojiHandler provides HTTP handlers for the emoji catalog.
type EmojiHandler struct {
	emojis *services.EmojiService
	logger *slog.Logger
}

// NewEmojiHandler constructs a handler with the provided service.
func NewEmojiHandler(emojis *services.EmojiService, logger *slog.Logger) *EmojiHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmojiHandler{emojis: emojis, logger: logger}
}

// EmojiRouter registers emoji routes on the given router. Writes go through
// requireToken.
func EmojiRouter(
	r chi.Router,
	emojis *services.EmojiService,
	requireToken func(http.Handler) http.Handler,
	logger *slog.Logger,
) {
	handler := NewEmojiHandler(emojis, logger)

	r.Get("/", handler.ListEmojis)
	r.With(requireToken).Post("/", handler.CreateEmoji)
	r.Get("/{id}", handler.GetEmoji)
	r.With(requireToken).Put("/{id}", handler.ReplaceEmoji)
	r.With(requireToken).Patch("/{id}", handler.PatchEmoji)
	r.With(requireToken).Delete("/{id}", handler.DeleteEmoji)
	r.Get("/{field}/{name}", handler.SearchByPath)
}

// SearchRouter registers the query string search endpoint.
func SearchRouter(r chi.Router, emojis *services.EmojiService, logger *slog.Logger) {
	handler := NewEmojiHandler(emojis, logger)
	r.Get("/", handler.SearchByQuery)
}

func (h *EmojiHandler) ListEmojis(w http.ResponseWriter, r *http.Request) {
	emojis, err := h.emojis.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, msgProcessingError)
		return
	}
	if len(emojis) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, emojis)
}

func (h *EmojiHandler) GetEmoji(w http.ResponseWriter, r *http.Request) {
	id, err := parseEmojiID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgEmojiNotFound)
		return
	}

	emoji, err := h.emojis.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, msgEmojiNotFound)
		return
	}
	writeJSON(w, http.StatusOK, emoji)
}

func (h *EmojiHandler) CreateEmoji(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, services.ErrNoToken, msgAddError)
		return
	}
	fields, err := parseFields(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, msgAddError)
		return
	}

	if _, err := h.emojis.Create(r.Context(), fields, user); err != nil {
		writeError(w, r, h.logger, err, msgAddError)
		return
	}
	writeMessage(w, http.StatusCreated, "Emoji added succesfully.")
}

func (h *EmojiHandler) ReplaceEmoji(w http.ResponseWriter, r *http.Request) {
	h.updateEmoji(w, r, h.emojis.Replace)
}

func (h *EmojiHandler) PatchEmoji(w http.ResponseWriter, r *http.Request) {
	h.updateEmoji(w, r, h.emojis.PartialUpdate)
}

type updateFunc func(ctx context.Context, id int, input services.Fields, actor types.User) (types.Emoji, error)

func (h *EmojiHandler) updateEmoji(w http.ResponseWriter, r *http.Request, update updateFunc) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, services.ErrNoToken, msgUpdateError)
		return
	}
	id, err := parseEmojiID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgEmojiNotFound)
		return
	}
	fields, err := parseFields(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, msgUpdateError)
		return
	}

	if _, err := update(r.Context(), id, fields, user); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, msgEmojiNotFound)
			return
		}
		writeError(w, r, h.logger, err, msgUpdateError)
		return
	}
	writeMessage(w, http.StatusCreated, "Emoji updated succesfully.")
}

func (h *EmojiHandler) DeleteEmoji(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, services.ErrNoToken, msgDeleteError)
		return
	}
	id, err := parseEmojiID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgDeleteError)
		return
	}

	if err := h.emojis.Delete(r.Context(), id, user); err != nil {
		writeError(w, r, h.logger, err, msgDeleteError)
		return
	}
	writeMessage(w, http.StatusOK, "Emoji deleted succesfully.")
}

// SearchByPath serves /emojis/{field}/{name}.
func (h *EmojiHandler) SearchByPath(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, pathParam(r, "field"), pathParam(r, "name"))
}

// SearchByQuery serves /search?field=&name=.
func (h *EmojiHandler) SearchByQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("field") || !query.Has("name") {
		writeMessage(w, http.StatusBadRequest, "Missing some required parameters")
		return
	}
	h.search(w, r, query.Get("field"), query.Get("name"))
}

func (h *EmojiHandler) search(w http.ResponseWriter, r *http.Request, field, value string) {
	emojis, err := h.emojis.Search(r.Context(), field, value)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			message := fmt.Sprintf("no emojis found whose %s field is %s", strings.ToLower(strings.TrimSpace(field)), value)
			writeMessage(w, http.StatusBadRequest, message)
			return
		}
		writeError(w, r, h.logger, err, msgProcessingError)
		return
	}
	writeJSON(w, http.StatusOK, emojis)
}
