// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduc/dokusha/internal/platform/database/schema"
	"github.com/phamduc/dokusha/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed follow store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// identifierColumn maps a source to the column holding the manga ID.
func identifierColumn(source Source) string {
	if source == SourceLocal {
		return schema.LibraryFollow.LocalMangaID
	}
	return schema.LibraryFollow.ExternalMangaID
}

/*
Create inserts a follow record.

Description: Uniqueness of (user, manga, source) is enforced by partial
unique indexes at the store level, not application locking; a duplicate
insert surfaces as a unique violation for the service to classify.

Parameters:
  - context: context.Context
  - follow: *Follow (ID must be pre-assigned)

Returns:
  - error: Unique violation on duplicates, other persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, follow *Follow) error {
	t := schema.LibraryFollow

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, t.Table,
		t.ID, t.UserID, t.LocalMangaID, t.ExternalMangaID, t.Source,
		t.CreatedAt)

	err := repository.db.QueryRow(context, query,
		follow.ID, follow.UserID, follow.LocalMangaID, follow.ExternalMangaID, string(follow.Source),
	).Scan(&follow.CreatedAt)
	if err != nil {
		// Let the service distinguish Conflict from infrastructure failure.
		if dberr.IsUniqueViolation(err) {
			return err
		}
		return dberr.Wrap(err, "create_follow")
	}

	return nil
}

/*
Delete removes the follow for (user, manga, source).

Parameters:
  - context: context.Context
  - userID, mangaID: string
  - source: Source

Returns:
  - bool: Whether a record existed
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, userID, mangaID string, source Source) (bool, error) {
	t := schema.LibraryFollow

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		t.Table, t.UserID, identifierColumn(source), t.Source)

	commandTag, err := repository.db.Exec(context, query, userID, mangaID, string(source))
	if err != nil {
		return false, dberr.Wrap(err, "delete_follow")
	}

	return commandTag.RowsAffected() > 0, nil
}

/*
Find retrieves the follow for (user, manga, source).

Parameters:
  - context: context.Context
  - userID, mangaID: string
  - source: Source

Returns:
  - *Follow: Hydrated record
  - error: dberr.ErrNotFound if absent
*/
func (repository *PostgresRepository) Find(context context.Context, userID, mangaID string, source Source) (*Follow, error) {
	t := schema.LibraryFollow

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
	`,
		t.ID, t.UserID, t.LocalMangaID, t.ExternalMangaID, t.Source, t.CreatedAt,
		t.Table,
		t.UserID, identifierColumn(source), t.Source)

	follow := &Follow{}
	err := repository.db.QueryRow(context, query, userID, mangaID, string(source)).Scan(
		&follow.ID, &follow.UserID, &follow.LocalMangaID, &follow.ExternalMangaID,
		&follow.Source, &follow.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_follow")
	}

	return follow, nil
}

/*
ListByUser returns the user's follows newest-first.

Parameters:
  - context: context.Context
  - userID: string
  - limit, offset: int

Returns:
  - []*Follow: Page of records
  - int: Total record count
  - error: Persistence failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, limit, offset int) ([]*Follow, int, error) {
	t := schema.LibraryFollow

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, COUNT(*) OVER() as total
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`,
		t.ID, t.UserID, t.LocalMangaID, t.ExternalMangaID, t.Source, t.CreatedAt,
		t.Table,
		t.UserID,
		t.CreatedAt)

	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_follows")
	}
	defer rows.Close()

	var follows []*Follow
	var total int
	for rows.Next() {
		follow := &Follow{}
		err := rows.Scan(
			&follow.ID, &follow.UserID, &follow.LocalMangaID, &follow.ExternalMangaID,
			&follow.Source, &follow.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_follow")
		}
		follows = append(follows, follow)
	}

	return follows, total, nil
}

/*
ListExternalMangaIDs returns every upstream manga ID the user follows.

Description: Ordered by follow creation so the feed builder processes manga
in a stable order across rebuilds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Upstream manga UUIDs
  - error: Persistence failures
*/
func (repository *PostgresRepository) ListExternalMangaIDs(context context.Context, userID string) ([]string, error) {
	t := schema.LibraryFollow

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = $2 AND %s IS NOT NULL
		ORDER BY %s ASC
	`,
		t.ExternalMangaID, t.Table,
		t.UserID, t.Source, t.ExternalMangaID,
		t.CreatedAt)

	rows, err := repository.db.Query(context, query, userID, string(SourceMangaDex))
	if err != nil {
		return nil, dberr.Wrap(err, "list_external_follows")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_external_follow")
		}
		ids = append(ids, id)
	}

	return ids, nil
}
