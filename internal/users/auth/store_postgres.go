// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduc/dokusha/internal/platform/database/schema"
	"github.com/phamduc/dokusha/internal/platform/dberr"
)

// PostgresRepository implements [UserRepository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed account store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Create inserts a new account.

Parameters:
  - context: context.Context
  - user: *User (ID and PasswordHash must be pre-assigned)

Returns:
  - error: Conflict on duplicate username/email, other persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	t := schema.UsersAccount

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s, %s
	`, t.Table,
		t.ID, t.Username, t.Email, t.PasswordHash, t.Role,
		t.IsActive, t.CreatedAt, t.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_account")
	}

	return nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	t := schema.UsersAccount
	return repository.findBy(context, t.ID, id)
}

/*
FindByEmail retrieves an account by its unique email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	t := schema.UsersAccount
	return repository.findBy(context, t.Email, email)
}

/*
FindByUsername retrieves an account by its unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*User, error) {
	t := schema.UsersAccount
	return repository.findBy(context, t.Username, username)
}

// findBy hydrates one account matched on a single column.
func (repository *PostgresRepository) findBy(context context.Context, column, value string) (*User, error) {
	t := schema.UsersAccount

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		t.ID, t.Username, t.Email, t.PasswordHash, t.Role, t.IsActive, t.CreatedAt, t.UpdatedAt,
		t.Table, column)

	user := &User{}
	err := repository.db.QueryRow(context, query, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_account")
	}

	return user, nil
}
