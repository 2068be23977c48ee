// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package comment

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

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Create inserts a new comment.

Parameters:
  - context: context.Context
  - comment: *Comment (ID must be pre-assigned)

Returns:
  - error: NotFound on dangling parent/chapter references, other persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	t := schema.SocialComment

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s
	`, t.Table,
		t.ID, t.UserID, t.MangaID, t.ChapterID, t.ParentID, t.Body,
		t.CreatedAt, t.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		comment.ID, comment.UserID, comment.MangaID, comment.ChapterID, comment.ParentID, comment.Body,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_comment")
	}

	return nil
}

/*
FindByID retrieves a single live comment.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comment: Hydrated entity
  - error: dberr.ErrNotFound if missing or deleted
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	t := schema.SocialComment
	a := schema.UsersAccount

	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, u.%s
		FROM %s c
		JOIN %s u ON c.%s = u.%s
		WHERE c.%s = $1 AND c.%s = FALSE
	`,
		t.ID, t.UserID, t.MangaID, t.ChapterID, t.ParentID, t.Body, t.CreatedAt, t.UpdatedAt, a.Username,
		t.Table, a.Table, t.UserID, a.ID,
		t.ID, t.IsDeleted)

	comment := &Comment{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&comment.ID, &comment.UserID, &comment.MangaID, &comment.ChapterID,
		&comment.ParentID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt,
		&comment.Username,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_comment")
	}

	return comment, nil
}

/*
ListByChapter returns a chapter's live comments, newest first.

Parameters:
  - context: context.Context
  - chapterID: string
  - limit, offset: int

Returns:
  - []*Comment: Page of comments
  - int: Total live count for the chapter
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByChapter(context context.Context, chapterID string, limit, offset int) ([]*Comment, int, error) {
	t := schema.SocialComment
	a := schema.UsersAccount

	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, u.%s,
		       COUNT(*) OVER() as total
		FROM %s c
		JOIN %s u ON c.%s = u.%s
		WHERE c.%s = $1 AND c.%s = FALSE
		ORDER BY c.%s DESC
		LIMIT $2 OFFSET $3
	`,
		t.ID, t.UserID, t.MangaID, t.ChapterID, t.ParentID, t.Body, t.CreatedAt, t.UpdatedAt, a.Username,
		t.Table, a.Table, t.UserID, a.ID,
		t.ChapterID, t.IsDeleted,
		t.CreatedAt)

	rows, err := repository.db.Query(context, query, chapterID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	var comments []*Comment
	var total int
	for rows.Next() {
		comment := &Comment{}
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.MangaID, &comment.ChapterID,
			&comment.ParentID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt,
			&comment.Username, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, comment)
	}

	return comments, total, nil
}

/*
SoftDelete marks a comment as deleted, restricted to its author.

Parameters:
  - context: context.Context
  - id, userID: string

Returns:
  - error: dberr.ErrNotFound if no live comment matches both id and author
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id, userID string) error {
	t := schema.SocialComment

	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE, %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s = FALSE
		RETURNING %s
	`, t.Table, t.IsDeleted, t.UpdatedAt, t.ID, t.UserID, t.IsDeleted, t.ID)

	var deletedID string
	if err := repository.db.QueryRow(context, query, id, userID).Scan(&deletedID); err != nil {
		return dberr.Wrap(err, "soft_delete_comment")
	}

	return nil
}

/*
CountByChapterIDs aggregates live comment counts for a set of chapters.

Description: One grouped query using ANY($1) regardless of set size; the
feed builder calls this once per feed build, not once per chapter.

Parameters:
  - context: context.Context
  - chapterIDs: []string

Returns:
  - map[string]int: chapterID → count (absent = zero)
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) CountByChapterIDs(context context.Context, chapterIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(chapterIDs))
	if len(chapterIDs) == 0 {
		return counts, nil
	}

	t := schema.SocialComment

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM %s
		WHERE %s = ANY($1) AND %s = FALSE
		GROUP BY %s
	`, t.ChapterID, t.Table, t.ChapterID, t.IsDeleted, t.ChapterID)

	rows, err := repository.db.Query(context, query, chapterIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "count_comments")
	}
	defer rows.Close()

	for rows.Next() {
		var chapterID string
		var count int
		if err := rows.Scan(&chapterID, &count); err != nil {
			return nil, dberr.Wrap(err, "scan_comment_count")
		}
		counts[chapterID] = count
	}

	return counts, nil
}
