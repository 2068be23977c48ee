// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phamduc/dokusha/internal/mangadex"
	"github.com/phamduc/dokusha/pkg/pagination"
	"github.com/phamduc/dokusha/pkg/query"
	"github.com/phamduc/dokusha/pkg/slice"
)

// # Contracts

// UpstreamCatalog is the slice of the catalog client the feed builder needs.
type UpstreamCatalog interface {
	GetMangaByIDs(context context.Context, ids []string) ([]mangadex.Manga, error)
	GetMangaFeed(context context.Context, mangaID string, options mangadex.FeedOptions) ([]mangadex.Chapter, error)
	UploadsBaseURL() string
}

// CommentCounter provides the grouped per-chapter comment counts joined
// into the feed.
type CommentCounter interface {
	CountForChapters(context context.Context, chapterIDs []string) (map[string]int, error)
}

// # Fan-out Tuning

const (
	// feedFetchBatchSize bounds concurrent per-manga feed calls.
	feedFetchBatchSize = 5

	// feedBatchPause is the fixed delay between fetch batches, cooperating
	// with the upstream's rate limits beyond what the client's own token
	// bucket enforces.
	feedBatchPause = 300 * time.Millisecond
)

// feedBuilder runs the aggregation pipeline on a cache miss.
type feedBuilder struct {
	upstream       UpstreamCatalog
	counter        CommentCounter
	lookbackMonths int
	logger         *slog.Logger
}

func newFeedBuilder(upstream UpstreamCatalog, counter CommentCounter, lookbackMonths int, logger *slog.Logger) *feedBuilder {
	return &feedBuilder{
		upstream:       upstream,
		counter:        counter,
		lookbackMonths: lookbackMonths,
		logger:         logger,
	}
}

// # Feed Entry Point

/*
GetFollowedMangaFeed produces one page of the user's aggregated chapter feed.

Description: Checks the cache first; on a miss it runs the full build
(fan-out, merge, sort, enrich), caches the complete array for
[FeedCacheTTL], then paginates in memory. The full array is cached rather
than the page so every page of the same filter set hits the same entry.

Parameters:
  - context: context.Context
  - userID: string
  - feedQuery: FeedQuery

Returns:
  - *FeedResult: One page plus pagination metadata
  - error: Persistence failures (upstream/cache failures degrade instead)
*/
func (service *Service) GetFollowedMangaFeed(context context.Context, userID string, feedQuery FeedQuery) (*FeedResult, error) {
	params := pagination.Normalize(feedQuery.Page, feedQuery.Limit, pagination.MaxLimit)
	languages := query.SortedUnique(feedQuery.TranslatedLanguages)
	cacheKey := feedCacheKey(userID, feedQuery.DateRange, languages)

	items, cacheHit := service.readCachedFeed(context, cacheKey)
	if !cacheHit {
		var err error
		items, err = service.feed.build(context, service.repo, userID, feedQuery.DateRange, languages)
		if err != nil {
			return nil, err
		}
		service.writeCachedFeed(context, cacheKey, items)
	}

	return paginateFeed(items, params), nil
}

// feedCacheKey derives the deterministic cache key for one filter set.
// Defaults encode the same as explicit omission: no range is "all", no
// languages is "any", and languages arrive pre-sorted and deduplicated.
func feedCacheKey(userID, dateRange string, sortedLanguages []string) string {
	rangePart := dateRange
	if rangePart == "" {
		rangePart = "all"
	}

	languagePart := "any"
	if len(sortedLanguages) > 0 {
		languagePart = strings.Join(sortedLanguages, ",")
	}

	return feedCachePrefix(userID) + rangePart + ":" + languagePart
}

// readCachedFeed loads and decodes a cached feed array. Any failure is a miss.
func (service *Service) readCachedFeed(context context.Context, cacheKey string) ([]ChapterFeedItem, bool) {
	payload, found, err := service.cache.Get(context, cacheKey)
	if err != nil {
		service.logger.Warn("feed_cache_read_failed", slog.String("error", err.Error()))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var items []ChapterFeedItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		service.logger.Warn("feed_cache_decode_failed", slog.String("error", err.Error()))
		return nil, false
	}

	return items, true
}

// writeCachedFeed stores the complete merged array. The write is skipped when
// the cache is unreachable and failures are swallowed; the feed never fails
// because caching did.
func (service *Service) writeCachedFeed(context context.Context, cacheKey string, items []ChapterFeedItem) {
	if !service.cache.IsReady() {
		return
	}

	payload, err := json.Marshal(items)
	if err != nil {
		service.logger.Warn("feed_cache_encode_failed", slog.String("error", err.Error()))
		return
	}

	if err := service.cache.Set(context, cacheKey, string(payload), FeedCacheTTL); err != nil {
		service.logger.Warn("feed_cache_write_failed", slog.String("error", err.Error()))
	}
}

// paginateFeed slices one page out of the full sorted array.
func paginateFeed(items []ChapterFeedItem, params pagination.Params) *FeedResult {
	total := len(items)
	offset := params.Offset()

	start := offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := items[start:end]

	return &FeedResult{
		Data:    page,
		Total:   total,
		Page:    params.Page,
		Limit:   params.Limit,
		HasMore: offset+len(page) < total,
	}
}

// # Build Pipeline

// mangaMeta is the per-manga enrichment resolved from the bulk cover fetch.
type mangaMeta struct {
	title    string
	coverURL string
}

/*
build runs the full aggregation on a cache miss.

Description: Loads the user's upstream follow set (empty set short-circuits
with zero upstream calls), bulk-fetches manga metadata for covers and
titles, fans out per-manga chapter fetches in bounded batches, flattens and
stable-sorts by publish time descending, then joins in comment counts. Only
the follow-set load can fail the build; every upstream or counter failure
degrades the result instead.

Parameters:
  - context: context.Context
  - repo: Repository
  - userID, dateRange: string
  - languages: []string (pre-sorted)

Returns:
  - []ChapterFeedItem: Complete merged feed, newest first
  - error: Follow store failures only
*/
func (builder *feedBuilder) build(context context.Context, repo Repository, userID, dateRange string, languages []string) ([]ChapterFeedItem, error) {
	mangaIDs, err := repo.ListExternalMangaIDs(context, userID)
	if err != nil {
		return nil, err
	}
	if len(mangaIDs) == 0 {
		return []ChapterFeedItem{}, nil
	}

	since := builder.lookbackBound(time.Now(), dateRange)
	metadata := builder.fetchMangaMeta(context, mangaIDs)
	chapterSets := builder.fetchChapterSets(context, mangaIDs, languages, since)

	items := builder.flatten(chapterSets, metadata)

	// The sort establishes the feed's observable order; fetch completion
	// order carries no meaning. Stable so equal timestamps keep their
	// relative order across rebuilds.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishAt.After(items[j].PublishAt)
	})

	builder.joinCommentCounts(context, items)

	return items, nil
}

// lookbackBound computes the feed's lower publish-time bound.
func (builder *feedBuilder) lookbackBound(now time.Time, dateRange string) time.Time {
	switch dateRange {
	case RangeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	default:
		// Safety cap bounding result size, not product behavior.
		return now.AddDate(0, -builder.lookbackMonths, 0)
	}
}

// fetchMangaMeta bulk-fetches titles and cover URLs in chunks within the
// upstream's per-call ID cap. Failures leave gaps; the feed renders without
// covers rather than failing.
func (builder *feedBuilder) fetchMangaMeta(context context.Context, mangaIDs []string) map[string]mangaMeta {
	metadata := make(map[string]mangaMeta, len(mangaIDs))

	for _, chunk := range slice.Chunk(mangaIDs, mangadex.MaxIDsPerMangaCall) {
		mangas, err := builder.upstream.GetMangaByIDs(context, chunk)
		if err != nil {
			builder.logger.Warn("feed_cover_fetch_failed",
				slog.Int("chunk_size", len(chunk)),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, manga := range mangas {
			metadata[manga.ID] = mangaMeta{
				title:    manga.DisplayTitle(),
				coverURL: manga.CoverURL(builder.upstream.UploadsBaseURL()),
			}
		}
	}

	return metadata
}

// fetchChapterSets fans out per-manga feed calls in batches of
// [feedFetchBatchSize] with a fixed pause between batches. Each manga's
// failure is isolated: its slot stays empty and the batch continues.
func (builder *feedBuilder) fetchChapterSets(context context.Context, mangaIDs, languages []string, since time.Time) [][]mangadex.Chapter {
	chapterSets := make([][]mangadex.Chapter, len(mangaIDs))
	batches := slice.Chunk(mangaIDs, feedFetchBatchSize)

	for batchIndex, batch := range batches {
		var waitGroup sync.WaitGroup

		for offsetInBatch, mangaID := range batch {
			index := batchIndex*feedFetchBatchSize + offsetInBatch

			waitGroup.Add(1)
			go func(index int, mangaID string) {
				defer waitGroup.Done()

				chapters, err := builder.upstream.GetMangaFeed(context, mangaID, mangadex.FeedOptions{
					TranslatedLanguages: languages,
					CreatedAtSince:      since,
				})
				if err != nil {
					builder.logger.Warn("feed_chapter_fetch_failed",
						slog.String("manga_id", mangaID),
						slog.String("error", err.Error()),
					)
					return
				}

				chapterSets[index] = chapters
			}(index, mangaID)
		}

		waitGroup.Wait()

		// Pause between batches, not after the last one.
		if batchIndex < len(batches)-1 {
			select {
			case <-time.After(feedBatchPause):
			case <-context.Done():
				return chapterSets
			}
		}
	}

	return chapterSets
}

// flatten maps every fetched chapter to a [ChapterFeedItem].
func (builder *feedBuilder) flatten(chapterSets [][]mangadex.Chapter, metadata map[string]mangaMeta) []ChapterFeedItem {
	items := make([]ChapterFeedItem, 0, 64)

	for _, chapters := range chapterSets {
		for _, chapter := range chapters {
			mangaID := chapter.MangaID()
			meta := metadata[mangaID]

			items = append(items, ChapterFeedItem{
				ChapterID:          chapter.ID,
				ChapterNumber:      chapter.Attributes.Chapter,
				Volume:             chapter.Attributes.Volume,
				Title:              chapter.Attributes.Title,
				PublishAt:          chapter.Attributes.PublishAt,
				ReadableAt:         chapter.Attributes.ReadableAt,
				ExternalURL:        chapter.Attributes.ExternalURL,
				MangaID:            mangaID,
				MangaTitle:         meta.title,
				CoverURL:           meta.coverURL,
				TranslatedLanguage: chapter.Attributes.TranslatedLanguage,
				ScanlationGroups:   chapter.ScanlationGroups(),
				CommentCount:       0,
				Source:             SourceMangaDex,
			})
		}
	}

	return items
}

// joinCommentCounts enriches items in place with per-chapter comment counts.
// A counter failure leaves every count at zero.
func (builder *feedBuilder) joinCommentCounts(context context.Context, items []ChapterFeedItem) {
	if len(items) == 0 {
		return
	}

	chapterIDs := slice.Map(items, func(item ChapterFeedItem) string {
		return item.ChapterID
	})

	counts, err := builder.counter.CountForChapters(context, chapterIDs)
	if err != nil {
		builder.logger.Warn("feed_comment_count_failed", slog.String("error", err.Error()))
		return
	}

	for index := range items {
		items[index].CommentCount = counts[items[index].ChapterID]
	}
}
