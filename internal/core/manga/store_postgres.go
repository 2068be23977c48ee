// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package manga

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduc/dokusha/internal/platform/database/schema"
	"github.com/phamduc/dokusha/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed catalog store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
List returns a filtered and paginated slice of the local catalog.

Description: Uses ILIKE for title search and COUNT(*) OVER() for total metadata.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Manga: Matching titles
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	t := schema.CoreManga

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total
		FROM %s
		WHERE %s IS NULL
	`, strings.Join(t.Columns(), ", "), t.Table, t.DeletedAt))

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", t.Title, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.Status, argID))
		args = append(args, filter.Status)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", t.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_manga")
	}
	defer rows.Close()

	var mangas []*Manga
	var total int
	for rows.Next() {
		item := &Manga{}
		err := rows.Scan(
			&item.ID, &item.Title, &item.AltTitle, &item.Slug, &item.Year, &item.Status,
			&item.ContentRating, &item.Description, &item.CoverURL, &item.FollowCount,
			&item.CreatedAt, &item.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_manga")
		}
		mangas = append(mangas, item)
	}

	return mangas, total, nil
}

/*
FindByID retrieves a single title by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Manga: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Manga, error) {
	t := schema.CoreManga

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		strings.Join(t.Columns(), ", "), t.Table, t.ID, t.DeletedAt)

	return repository.scanOne(context, query, id)
}

/*
FindBySlug retrieves a single title by its URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Manga: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Manga, error) {
	t := schema.CoreManga

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		strings.Join(t.Columns(), ", "), t.Table, t.Slug, t.DeletedAt)

	return repository.scanOne(context, query, slug)
}

/*
Exists reports whether a non-deleted title with this ID exists.

Description: Cheaper than FindByID when only referential integrity matters
(the follow service uses this before creating a local-source follow).

Parameters:
  - context: context.Context
  - id: string

Returns:
  - bool: Presence flag
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	t := schema.CoreManga

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL)`,
		t.Table, t.ID, t.DeletedAt)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "manga_exists")
	}

	return exists, nil
}

/*
Create inserts a new local title.

Parameters:
  - context: context.Context
  - manga: *Manga (ID and Slug must be pre-assigned)

Returns:
  - error: Conflict on duplicate slug, other persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, manga *Manga) error {
	t := schema.CoreManga

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`, t.Table,
		t.ID, t.Title, t.AltTitle, t.Slug, t.Year, t.Status, t.ContentRating, t.Description, t.CoverURL,
		t.CreatedAt, t.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		manga.ID, manga.Title, manga.AltTitle, manga.Slug, manga.Year,
		manga.Status, manga.ContentRating, manga.Description, manga.CoverURL,
	).Scan(&manga.CreatedAt, &manga.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_manga")
	}

	return nil
}

/*
Update rewrites the mutable fields of an existing title.

Parameters:
  - context: context.Context
  - manga: *Manga

Returns:
  - error: dberr.ErrNotFound if missing, other persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, manga *Manga) error {
	t := schema.CoreManga

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`, t.Table,
		t.Title, t.AltTitle, t.Year, t.Status, t.ContentRating, t.Description, t.CoverURL, t.UpdatedAt,
		t.ID, t.DeletedAt, t.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		manga.ID, manga.Title, manga.AltTitle, manga.Year,
		manga.Status, manga.ContentRating, manga.Description, manga.CoverURL,
	).Scan(&manga.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_manga")
	}

	return nil
}

/*
SoftDelete marks a title as deleted without destroying its rows.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: dberr.ErrNotFound if missing, other persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	t := schema.CoreManga

	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL RETURNING %s
	`, t.Table, t.DeletedAt, t.ID, t.DeletedAt, t.ID)

	var deletedID string
	if err := repository.db.QueryRow(context, query, id).Scan(&deletedID); err != nil {
		return dberr.Wrap(err, "soft_delete_manga")
	}

	return nil
}

// scanOne runs a single-row catalog query and hydrates one entity.
func (repository *PostgresRepository) scanOne(context context.Context, query string, arg any) (*Manga, error) {
	item := &Manga{}
	err := repository.db.QueryRow(context, query, arg).Scan(
		&item.ID, &item.Title, &item.AltTitle, &item.Slug, &item.Year, &item.Status,
		&item.ContentRating, &item.Description, &item.CoverURL, &item.FollowCount,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_manga")
	}

	return item, nil
}
