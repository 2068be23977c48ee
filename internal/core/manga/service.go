// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package manga

import (
	"context"
	"log/slog"

	"github.com/phamduc/dokusha/internal/platform/validate"
	"github.com/phamduc/dokusha/pkg/slug"
	"github.com/phamduc/dokusha/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for the local catalog.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new manga [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

/*
ListManga retrieves a paginated and filtered list of local titles.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Manga: List of titles
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListManga(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetManga retrieves a title by its UUID or Slug identifier.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Manga: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetManga(context context.Context, identifier string) (*Manga, error) {

	// Discriminator: ID vs Slug
	// UUIDs have a fixed length of 36 characters in standard hyphenated format.
	if len(identifier) == 36 {
		return service.repo.FindByID(context, identifier)
	}

	return service.repo.FindBySlug(context, identifier)
}

/*
MangaExists reports whether a local title with this ID exists.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - bool: Presence flag
  - error: Retrieval errors
*/
func (service *Service) MangaExists(context context.Context, id string) (bool, error) {
	return service.repo.Exists(context, id)
}

/*
CreateManga validates and persists a new local title.

Parameters:
  - context: context.Context
  - manga: *Manga

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateManga(context context.Context, manga *Manga) error {
	if err := validateManga(manga); err != nil {
		return err
	}

	manga.ID = uuid.New()
	manga.Slug = slug.From(manga.Title)
	if manga.ContentRating == "" {
		manga.ContentRating = "safe"
	}

	if err := service.repo.Create(context, manga); err != nil {
		return err
	}

	service.logger.Info("manga_created",
		slog.String("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
	)

	return nil
}

/*
UpdateManga validates and rewrites an existing local title.

Parameters:
  - context: context.Context
  - manga: *Manga

Returns:
  - error: Validation, ErrNotFound, or persistence failures
*/
func (service *Service) UpdateManga(context context.Context, manga *Manga) error {
	if err := validateManga(manga); err != nil {
		return err
	}

	if err := service.repo.Update(context, manga); err != nil {
		return err
	}

	service.logger.Info("manga_updated", slog.String("manga_id", manga.ID))
	return nil
}

/*
DeleteManga soft-deletes a local title.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: ErrNotFound or persistence failures
*/
func (service *Service) DeleteManga(context context.Context, id string) error {
	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("manga_deleted", slog.String("manga_id", id))
	return nil
}

// validateManga enforces field-level rules shared by create and update.
func validateManga(manga *Manga) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, manga.Title).MaxLen(FieldTitle, manga.Title, 500)

	if manga.Status != "" {
		validator.OneOf(FieldStatus, manga.Status,
			StatusOngoing, StatusCompleted, StatusHiatus, StatusCancelled)
	} else {
		manga.Status = StatusOngoing
	}

	if manga.Description != nil {
		validator.MaxLen(FieldDescription, *manga.Description, 5000)
	}

	return validator.Err()
}
