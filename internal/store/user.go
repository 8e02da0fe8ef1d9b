package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/naija-emoji/apiserver/types"
)

const userColumns = `id, username, password, token, expires`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByToken returns the user currently holding token.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE token = ?`, token)
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, password, token, expires)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowxContext(
		ctx,
		r.db.Rebind(query),
		user.Username,
		user.Password,
		user.Token,
		user.Expires,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

// SetToken stores a freshly issued token and its expiry on the user.
func (r *UserRepository) SetToken(ctx context.Context, id int, token string, expires int64) error {
	const query = `UPDATE users SET token = ?, expires = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), token, expires, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// ClearToken removes the session of the user, but only while the user still
// holds token. A newer token issued in the meantime is left untouched.
func (r *UserRepository) ClearToken(ctx context.Context, id int, token string) error {
	const query = `UPDATE users SET token = NULL, expires = NULL WHERE id = ? AND token = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id, token)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (types.User, error) {
	var user types.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
