package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/naija-emoji/apiserver/internal/db/dbtest"
	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/naija-emoji/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmoji(name, char, category, createdBy string, keywords ...string) types.Emoji {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return types.Emoji{
		Name:         name,
		Char:         char,
		Keywords:     keywords,
		Category:     category,
		DateCreated:  now,
		DateModified: now,
		CreatedBy:    createdBy,
	}
}

func TestEmojiRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := store.NewEmojiRepository(dbtest.NewSQLite(t))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := repo.Create(ctx, newEmoji("innocent", "😇", "person", "kemi", "happy", "holy", "angel"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "innocent", fetched.Name)
	assert.Equal(t, "😇", fetched.Char)
	assert.Equal(t, types.Keywords{"happy", "holy", "angel"}, fetched.Keywords)
	assert.Equal(t, "kemi", fetched.CreatedBy)
	assert.True(t, created.DateCreated.Equal(fetched.DateCreated))

	fetched.Name = "angel"
	fetched.DateModified = fetched.DateModified.Add(time.Hour)
	fetched.CreatedBy = "someone-else"
	_, err = repo.Update(ctx, fetched)
	require.NoError(t, err)

	updated, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "angel", updated.Name)
	assert.Equal(t, "kemi", updated.CreatedBy, "created_by is immutable")
	assert.True(t, created.DateCreated.Equal(updated.DateCreated))
	assert.True(t, fetched.DateModified.Equal(updated.DateModified))

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEmojiRepositoryMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := store.NewEmojiRepository(dbtest.NewSQLite(t))

	_, err := repo.Get(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.Update(ctx, types.Emoji{ID: 42, Name: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 42), store.ErrNotFound)
}

func TestEmojiRepositoryFindBy(t *testing.T) {
	ctx := context.Background()
	repo := store.NewEmojiRepository(dbtest.NewSQLite(t))

	seed := []types.Emoji{
		newEmoji("innocent", "😇", "person", "kemi", "happy", "holy"),
		newEmoji("grin", "😁", "person", "tunde", "Happy", "teeth"),
		newEmoji("dog", "🐶", "animal", "kemi", "pet", "100%_loyal"),
	}
	for _, emoji := range seed {
		_, err := repo.Create(ctx, emoji)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		field store.EmojiField
		value string
		want  []string
	}{
		{name: "category", field: store.FieldCategory, value: "person", want: []string{"innocent", "grin"}},
		{name: "created_by", field: store.FieldCreatedBy, value: "kemi", want: []string{"innocent", "dog"}},
		{name: "char", field: store.FieldChar, value: "🐶", want: []string{"dog"}},
		{name: "keyword exact case", field: store.FieldKeywords, value: "happy", want: []string{"innocent"}},
		{name: "keyword with like wildcards", field: store.FieldKeywords, value: "100%_loyal", want: []string{"dog"}},
		{name: "keyword prefix does not match", field: store.FieldKeywords, value: "hap", want: nil},
		{name: "no match", field: store.FieldName, value: "cat", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindBy(ctx, tt.field, tt.value)
			require.NoError(t, err)

			var names []string
			for _, emoji := range found {
				names = append(names, emoji.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := repo.FindBy(ctx, store.EmojiField("password"), "x")
	assert.Error(t, err)
}

func TestParseEmojiField(t *testing.T) {
	field, ok := store.ParseEmojiField(" Category ")
	assert.True(t, ok)
	assert.Equal(t, store.FieldCategory, field)

	_, ok = store.ParseEmojiField("id; DROP TABLE emojis")
	assert.False(t, ok)

	_, ok = store.ParseEmojiField("date_created")
	assert.False(t, ok)
}

func TestEmojiRepositoryListFailure(t *testing.T) {
	conn, mock := newPostgresMock(t)
	repo := store.NewEmojiRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM emojis ORDER BY id`)).WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background())
	assert.EqualError(t, err, "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}
