package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/naija-emoji/apiserver/internal/events"
	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/naija-emoji/apiserver/types"
)

const (
	fieldName     = "name"
	fieldChar     = "char"
	fieldKeywords = "keywords"
	fieldCategory = "category"
)

var emojiFields = []string{fieldName, fieldChar, fieldKeywords, fieldCategory}

// EmojiRepository defines persistence operations for emojis.
type EmojiRepository interface {
	List(ctx context.Context) ([]types.Emoji, error)
	Get(ctx context.Context, id int) (types.Emoji, error)
	Create(ctx context.Context, emoji types.Emoji) (types.Emoji, error)
	Update(ctx context.Context, emoji types.Emoji) (types.Emoji, error)
	Delete(ctx context.Context, id int) error
	FindBy(ctx context.Context, field store.EmojiField, value string) ([]types.Emoji, error)
}

// EventPublisher receives emoji change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EmojiService manages the emoji catalog.
type EmojiService struct {
	repo   EmojiRepository
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewEmojiService(repo EmojiRepository, publisher EventPublisher, logger *slog.Logger) *EmojiService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmojiService{
		repo:   repo,
		events: publisher,
		logger: logger.With(slog.String("component", "emoji")),
		now:    time.Now,
	}
}

func (s *EmojiService) List(ctx context.Context) ([]types.Emoji, error) {
	emojis, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list emojis: %w", err)
	}
	return emojis, nil
}

func (s *EmojiService) Get(ctx context.Context, id int) (types.Emoji, error) {
	emoji, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Emoji{}, ErrNotFound
		}
		return types.Emoji{}, fmt.Errorf("get emoji %d: %w", id, err)
	}
	return emoji, nil
}

// Create adds an emoji owned by creator. All four fields are required.
func (s *EmojiService) Create(ctx context.Context, input Fields, creator types.User) (types.Emoji, error) {
	if err := validateComplete(input); err != nil {
		return types.Emoji{}, err
	}

	now := s.now().UTC()
	emoji := types.Emoji{
		DateCreated:  now,
		DateModified: now,
		CreatedBy:    creator.Username,
	}
	if err := applyFields(&emoji, input); err != nil {
		return types.Emoji{}, err
	}

	created, err := s.repo.Create(ctx, emoji)
	if err != nil {
		return types.Emoji{}, fmt.Errorf("create emoji: %w", err)
	}

	s.logger.InfoContext(ctx, "emoji created", slog.Int("emoji_id", created.ID), slog.String("actor", creator.Username))
	s.publish(ctx, events.EmojiCreated, created.ID, creator.Username)
	return created, nil
}

// Replace overwrites every mutable field of the emoji.
func (s *EmojiService) Replace(ctx context.Context, id int, input Fields, actor types.User) (types.Emoji, error) {
	if err := validateComplete(input); err != nil {
		return types.Emoji{}, err
	}
	return s.update(ctx, id, input, actor)
}

// PartialUpdate changes only the submitted fields. At least one is required.
func (s *EmojiService) PartialUpdate(ctx context.Context, id int, input Fields, actor types.User) (types.Emoji, error) {
	if err := input.rejectUnknown(emojiFields...); err != nil {
		return types.Emoji{}, err
	}
	if len(input) == 0 {
		return types.Emoji{}, invalidInput("No fields provided.")
	}
	if err := input.rejectEmpty(emojiFields...); err != nil {
		return types.Emoji{}, err
	}
	return s.update(ctx, id, input, actor)
}

func (s *EmojiService) update(ctx context.Context, id int, input Fields, actor types.User) (types.Emoji, error) {
	emoji, err := s.Get(ctx, id)
	if err != nil {
		return types.Emoji{}, err
	}
	if err := applyFields(&emoji, input); err != nil {
		return types.Emoji{}, err
	}
	emoji.DateModified = s.now().UTC()

	updated, err := s.repo.Update(ctx, emoji)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Emoji{}, ErrNotFound
		}
		return types.Emoji{}, fmt.Errorf("update emoji %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "emoji updated", slog.Int("emoji_id", id), slog.String("actor", actor.Username))
	s.publish(ctx, events.EmojiUpdated, id, actor.Username)
	return updated, nil
}

func (s *EmojiService) Delete(ctx context.Context, id int, actor types.User) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete emoji %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "emoji deleted", slog.Int("emoji_id", id), slog.String("actor", actor.Username))
	s.publish(ctx, events.EmojiDeleted, id, actor.Username)
	return nil
}

// Search returns the emojis whose field matches value. An empty result is
// ErrNotFound.
func (s *EmojiService) Search(ctx context.Context, field, value string) ([]types.Emoji, error) {
	if strings.TrimSpace(field) == "" || strings.TrimSpace(value) == "" {
		return nil, emptyValue()
	}
	searchField, ok := store.ParseEmojiField(field)
	if !ok {
		return nil, invalidInput("Invalid search field: " + field)
	}

	emojis, err := s.repo.FindBy(ctx, searchField, value)
	if err != nil {
		return nil, fmt.Errorf("search emojis by %s: %w", searchField, err)
	}
	if len(emojis) == 0 {
		return nil, ErrNotFound
	}
	return emojis, nil
}

func (s *EmojiService) publish(ctx context.Context, eventType events.Type, id int, actor string) {
	event := events.Event{
		Type:       eventType,
		EmojiID:    id,
		Actor:      actor,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish emoji event failed",
			slog.String("type", string(eventType)),
			slog.Int("emoji_id", id),
			slog.Any("error", err),
		)
	}
}

func validateComplete(input Fields) error {
	if err := input.rejectUnknown(emojiFields...); err != nil {
		return err
	}
	if err := input.requirePresent(emojiFields...); err != nil {
		return err
	}
	return input.rejectEmpty(emojiFields...)
}

// applyFields copies the submitted fields onto emoji. Callers validate
// presence and emptiness first.
func applyFields(emoji *types.Emoji, input Fields) error {
	for name, value := range input {
		value = strings.TrimSpace(value)
		switch name {
		case fieldName:
			emoji.Name = value
		case fieldChar:
			emoji.Char = value
		case fieldCategory:
			emoji.Category = value
		case fieldKeywords:
			keywords := types.ParseKeywords(value)
			if len(keywords) == 0 {
				return emptyValue()
			}
			emoji.Keywords = keywords
		}
	}
	return nil
}
