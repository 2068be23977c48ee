// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package comment

import (
	"context"
	"log/slog"

	"github.com/phamduc/dokusha/internal/platform/validate"
	"github.com/phamduc/dokusha/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for discussion threads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new comment [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

/*
PostComment validates and persists a new comment.

Parameters:
  - context: context.Context
  - comment: *Comment (UserID must be set by the caller from auth claims)

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) PostComment(context context.Context, comment *Comment) error {
	validator := &validate.Validator{}
	validator.Required(FieldBody, comment.Body).MaxLen(FieldBody, comment.Body, 2000)
	validator.Custom(FieldChapterID, comment.ChapterID == nil && comment.MangaID == nil,
		"a comment must target a chapter or a manga")

	if err := validator.Err(); err != nil {
		return err
	}

	comment.ID = uuid.New()

	if err := service.repo.Create(context, comment); err != nil {
		return err
	}

	service.logger.Info("comment_posted",
		slog.String("comment_id", comment.ID),
		slog.String("user_id", comment.UserID),
	)

	return nil
}

/*
ListChapterComments returns a chapter's comments, newest first.

Parameters:
  - context: context.Context
  - chapterID: string
  - limit, offset: int

Returns:
  - []*Comment: Page of comments
  - int: Total count
  - error: Retrieval errors
*/
func (service *Service) ListChapterComments(context context.Context, chapterID string, limit, offset int) ([]*Comment, int, error) {
	return service.repo.ListByChapter(context, chapterID, limit, offset)
}

/*
DeleteComment removes the author's own comment.

Parameters:
  - context: context.Context
  - id, userID: string

Returns:
  - error: ErrNotFound when the comment is missing or owned by someone else
*/
func (service *Service) DeleteComment(context context.Context, id, userID string) error {
	if err := service.repo.SoftDelete(context, id, userID); err != nil {
		return err
	}

	service.logger.Info("comment_deleted", slog.String("comment_id", id))
	return nil
}

/*
CountForChapters returns per-chapter live comment counts, zero-defaulted.

Description: Every requested chapter ID is present in the result; chapters
with no comments map to 0 so feed mapping code needs no existence checks.

Parameters:
  - context: context.Context
  - chapterIDs: []string

Returns:
  - map[string]int: chapterID → count
  - error: Retrieval errors
*/
func (service *Service) CountForChapters(context context.Context, chapterIDs []string) (map[string]int, error) {
	counts, err := service.repo.CountByChapterIDs(context, chapterIDs)
	if err != nil {
		return nil, err
	}

	for _, chapterID := range chapterIDs {
		if _, ok := counts[chapterID]; !ok {
			counts[chapterID] = 0
		}
	}

	return counts, nil
}
