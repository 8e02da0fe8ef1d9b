package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/naija-emoji/apiserver/types"
)

const emojiColumns = `id, name, "char", keywords, category, date_created, date_modified, created_by`

// EmojiField names a column emojis can be searched by.
type EmojiField string

const (
	FieldName      EmojiField = "name"
	FieldChar      EmojiField = "char"
	FieldCategory  EmojiField = "category"
	FieldCreatedBy EmojiField = "created_by"
	FieldKeywords  EmojiField = "keywords"
)

var searchableFields = map[EmojiField]string{
	FieldName:      `name`,
	FieldChar:      `"char"`,
	FieldCategory:  `category`,
	FieldCreatedBy: `created_by`,
	FieldKeywords:  `keywords`,
}

// ParseEmojiField validates a caller supplied search field.
func ParseEmojiField(raw string) (EmojiField, bool) {
	field := EmojiField(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := searchableFields[field]
	return field, ok
}

// EmojiRepository handles persistence for emojis.
type EmojiRepository struct {
	db *sqlx.DB
}

func NewEmojiRepository(db *sqlx.DB) *EmojiRepository {
	return &EmojiRepository{db: db}
}

func (r *EmojiRepository) List(ctx context.Context) ([]types.Emoji, error) {
	emojis := []types.Emoji{}
	query := `SELECT ` + emojiColumns + ` FROM emojis ORDER BY id`
	if err := r.db.SelectContext(ctx, &emojis, query); err != nil {
		return nil, err
	}
	return emojis, nil
}

func (r *EmojiRepository) Get(ctx context.Context, id int) (types.Emoji, error) {
	var emoji types.Emoji
	query := r.db.Rebind(`SELECT ` + emojiColumns + ` FROM emojis WHERE id = ?`)
	if err := r.db.GetContext(ctx, &emoji, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Emoji{}, ErrNotFound
		}
		return types.Emoji{}, err
	}
	return emoji, nil
}

// Create inserts emoji as given, including its audit fields.
func (r *EmojiRepository) Create(ctx context.Context, emoji types.Emoji) (types.Emoji, error) {
	const query = `
		INSERT INTO emojis (name, "char", keywords, category, date_created, date_modified, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := r.db.QueryRowxContext(
		ctx,
		r.db.Rebind(query),
		emoji.Name,
		emoji.Char,
		emoji.Keywords,
		emoji.Category,
		emoji.DateCreated,
		emoji.DateModified,
		emoji.CreatedBy,
	).Scan(&emoji.ID); err != nil {
		return types.Emoji{}, err
	}
	return emoji, nil
}

// Update overwrites the mutable fields of emoji. DateCreated and CreatedBy
// are never written.
func (r *EmojiRepository) Update(ctx context.Context, emoji types.Emoji) (types.Emoji, error) {
	const query = `
		UPDATE emojis
		SET name = ?,
			"char" = ?,
			keywords = ?,
			category = ?,
			date_modified = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(query),
		emoji.Name,
		emoji.Char,
		emoji.Keywords,
		emoji.Category,
		emoji.DateModified,
		emoji.ID,
	)
	if err != nil {
		return types.Emoji{}, err
	}
	if err := expectAffected(result); err != nil {
		return types.Emoji{}, err
	}
	return emoji, nil
}

func (r *EmojiRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM emojis WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// FindBy returns the emojis whose field equals value. For FieldKeywords an
// emoji matches when value is one of its keywords.
func (r *EmojiRepository) FindBy(ctx context.Context, field EmojiField, value string) ([]types.Emoji, error) {
	column, ok := searchableFields[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not searchable", field)
	}

	where := column + ` = ?`
	arg := value
	if field == FieldKeywords {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		where = column + ` LIKE ? ESCAPE '\'`
		arg = "%" + escapeLike(string(encoded)) + "%"
	}

	emojis := []types.Emoji{}
	query := r.db.Rebind(`SELECT ` + emojiColumns + ` FROM emojis WHERE ` + where + ` ORDER BY id`)
	if err := r.db.SelectContext(ctx, &emojis, query, arg); err != nil {
		return nil, err
	}

	if field == FieldKeywords {
		// LIKE is case-insensitive on SQLite; keep exact matches only.
		matched := emojis[:0]
		for _, emoji := range emojis {
			if emoji.Keywords.Contains(value) {
				matched = append(matched, emoji)
			}
		}
		emojis = matched
	}
	return emojis, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
