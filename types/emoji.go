package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Emoji represents a single emoji record in the catalog.
type Emoji struct {
	// ID is the unique identifier of the emoji.
	ID int `json:"id" db:"id"`

	// Name is the human-readable name of the emoji (e.g. "innocent").
	Name string `json:"name" db:"name"`

	// Char is the emoji character itself.
	Char string `json:"char" db:"char"`

	// Keywords are the search terms associated with the emoji. They are
	// persisted as a JSON encoded array.
	Keywords Keywords `json:"keywords" db:"keywords"`

	// Category groups related emojis (e.g. "person", "animal").
	Category string `json:"category" db:"category"`

	// DateCreated is the timestamp at which the emoji was added.
	DateCreated time.Time `json:"date_created" db:"date_created"`

	// DateModified is the timestamp of the most recent change to the emoji.
	DateModified time.Time `json:"date_modified" db:"date_modified"`

	// CreatedBy is the username of the user who added the emoji.
	CreatedBy string `json:"created_by" db:"created_by"`
}

// Keywords is a list of keywords stored as a JSON array in a text column.
type Keywords []string

// ParseKeywords splits a comma separated keyword list. Each keyword is
// trimmed and blank entries are dropped.
func ParseKeywords(raw string) Keywords {
	parts := strings.Split(raw, ",")
	keywords := make(Keywords, 0, len(parts))
	for _, part := range parts {
		keyword := strings.TrimSpace(part)
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}

// Contains reports whether k holds keyword.
func (k Keywords) Contains(keyword string) bool {
	for _, candidate := range k {
		if candidate == keyword {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		k = Keywords{}
	}
	data, err := json.Marshal([]string(k))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (k *Keywords) Scan(src any) error {
	var data []byte
	switch value := src.(type) {
	case nil:
		*k = Keywords{}
		return nil
	case string:
		data = []byte(value)
	case []byte:
		data = value
	default:
		return fmt.Errorf("keywords: unsupported type %T", src)
	}

	if len(data) == 0 {
		*k = Keywords{}
		return nil
	}

	var parsed []string
	if err := json.Unmarshal(data, &parsed); err != nil {
		return errors.New("keywords: invalid json array")
	}
	*k = parsed
	return nil
}
