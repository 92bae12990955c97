package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user and fills in the generated ID.
// A duplicate username is reported as apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	err := db.queryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING user_id`,
		user.Username,
		user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		if cerr := constraintError(err, "user", user.Username, "username"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("sqlstore: inserting user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.queryRow(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE user_id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User", id)
		}
		return nil, fmt.Errorf("sqlstore: getting user %d: %w", id, err)
	}

	return &u, nil
}

// GetUserByUsername is the credential lookup: the caller compares the
// password against the returned hash.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.queryRow(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("User %q not found.", username))
		}
		return nil, fmt.Errorf("sqlstore: getting user %q: %w", username, err)
	}

	return &u, nil
}
