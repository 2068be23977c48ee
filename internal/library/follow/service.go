// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phamduc/dokusha/internal/platform/apperr"
	"github.com/phamduc/dokusha/internal/platform/cache"
	"github.com/phamduc/dokusha/internal/platform/dberr"
	"github.com/phamduc/dokusha/internal/platform/validate"
	"github.com/phamduc/dokusha/pkg/pagination"
	"github.com/phamduc/dokusha/pkg/pointer"
	"github.com/phamduc/dokusha/pkg/uuid"
)

// # Contracts

// CatalogChecker verifies that a locally-owned manga exists before a
// local-source follow is created.
type CatalogChecker interface {
	MangaExists(context context.Context, id string) (bool, error)
}

// # Service Layer

// Service orchestrates follow mutations and the aggregated chapter feed.
type Service struct {
	repo    Repository
	catalog CatalogChecker
	cache   cache.Store
	feed    *feedBuilder
	logger  *slog.Logger
}

// NewService constructs a follow [Service].
//
// upstream and counter feed the aggregation pipeline; see [UpstreamCatalog]
// and [CommentCounter]. lookbackMonths bounds the default feed window when a
// request names no date range.
func NewService(
	repo Repository,
	catalog CatalogChecker,
	cacheStore cache.Store,
	upstream UpstreamCatalog,
	counter CommentCounter,
	lookbackMonths int,
	logger *slog.Logger,
) *Service {
	service := &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cacheStore,
		logger:  logger,
	}
	service.feed = newFeedBuilder(upstream, counter, lookbackMonths, logger)
	return service
}

// feedCachePrefix namespaces all cached feed variants of one user, so a
// single prefix deletion invalidates every (dateRange, language) combination.
func feedCachePrefix(userID string) string {
	return fmt.Sprintf("feed:follows:%s:", userID)
}

// # Follow Mutations

/*
FollowManga subscribes a user to a manga.

Description: For a local-source follow the referenced manga must exist in
the local catalog. Success invalidates every cached feed of the user;
invalidation is best-effort and never fails the mutation.

Parameters:
  - context: context.Context
  - userID, mangaID: string
  - source: Source

Returns:
  - *Follow: Created record
  - error: Conflict when already following, NotFound for a missing local manga
*/
func (service *Service) FollowManga(context context.Context, userID, mangaID string, source Source) (*Follow, error) {
	if err := validateTarget(mangaID, source); err != nil {
		return nil, err
	}

	if source == SourceLocal {
		exists, err := service.catalog.MangaExists(context, mangaID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("Manga")
		}
	}

	record := &Follow{
		ID:     uuid.New(),
		UserID: userID,
		Source: source,
	}
	if source == SourceLocal {
		record.LocalMangaID = pointer.To(mangaID)
	} else {
		record.ExternalMangaID = pointer.To(mangaID)
	}

	if err := service.repo.Create(context, record); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Already following this manga")
		}
		return nil, err
	}

	service.invalidateFeedCache(context, userID)

	service.logger.Info("manga_followed",
		slog.String("user_id", userID),
		slog.String("manga_id", mangaID),
		slog.String("source", string(source)),
	)

	return record, nil
}

/*
UnfollowManga removes a subscription.

Parameters:
  - context: context.Context
  - userID, mangaID: string
  - source: Source

Returns:
  - error: NotFound when no matching record exists
*/
func (service *Service) UnfollowManga(context context.Context, userID, mangaID string, source Source) error {
	if err := validateTarget(mangaID, source); err != nil {
		return err
	}

	removed, err := service.repo.Delete(context, userID, mangaID, source)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Follow")
	}

	service.invalidateFeedCache(context, userID)

	service.logger.Info("manga_unfollowed",
		slog.String("user_id", userID),
		slog.String("manga_id", mangaID),
		slog.String("source", string(source)),
	)

	return nil
}

/*
IsFollowing checks for a subscription without side effects.

Parameters:
  - context: context.Context
  - userID, mangaID: string
  - source: Source

Returns:
  - Status: {is_following, follow_id?}
  - error: Validation or persistence failures
*/
func (service *Service) IsFollowing(context context.Context, userID, mangaID string, source Source) (Status, error) {
	if err := validateTarget(mangaID, source); err != nil {
		return Status{}, err
	}

	record, err := service.repo.Find(context, userID, mangaID, source)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return Status{IsFollowing: false}, nil
		}
		return Status{}, err
	}

	return Status{IsFollowing: true, FollowID: pointer.To(record.ID)}, nil
}

/*
ListFollows returns the user's subscriptions, newest-first.

Description: The page size is clamped to [MaxListLimit] regardless of what
the caller requests.

Parameters:
  - context: context.Context
  - userID: string
  - page, limit: int

Returns:
  - []*Follow: Page of records
  - pagination.Meta: Metadata with the has_more flag
  - error: Persistence failures
*/
func (service *Service) ListFollows(context context.Context, userID string, page, limit int) ([]*Follow, pagination.Meta, error) {
	params := pagination.Normalize(page, limit, MaxListLimit)

	follows, total, err := service.repo.ListByUser(context, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return follows, pagination.NewMeta(params.Page, params.Limit, total, len(follows)), nil
}

// # Cache Invalidation

// invalidateFeedCache drops every cached feed of the user. Cache failures
// degrade freshness, never correctness, so errors are logged and swallowed.
func (service *Service) invalidateFeedCache(context context.Context, userID string) {
	if err := service.cache.DeleteByPrefix(context, feedCachePrefix(userID)); err != nil {
		service.logger.Warn("feed_cache_invalidation_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// validateTarget enforces the identifier and source fields of a mutation.
func validateTarget(mangaID string, source Source) error {
	validator := &validate.Validator{}
	validator.Required(FieldMangaID, mangaID).UUID(FieldMangaID, mangaID)
	validator.Custom(FieldSource, !source.Valid(), "source must be 'local' or 'mangadex'")
	return validator.Err()
}
