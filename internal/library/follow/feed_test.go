// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/dokusha/internal/library/follow"
	"github.com/phamduc/dokusha/internal/mangadex"
)

func makeChapter(id, mangaID string, publishAt time.Time) mangadex.Chapter {
	return mangadex.Chapter{
		ID: id,
		Attributes: mangadex.ChapterAttributes{
			TranslatedLanguage: "en",
			PublishAt:          publishAt,
			ReadableAt:         publishAt,
		},
		Relationships: []mangadex.Relationship{
			{ID: mangaID, Type: "manga"},
			{ID: "g-1", Type: "scanlation_group", Attributes: json.RawMessage(`{"name":"Alpha Scans"}`)},
		},
	}
}

func makeManga(id, englishTitle, coverFile string) mangadex.Manga {
	return mangadex.Manga{
		ID: id,
		Attributes: mangadex.MangaAttributes{
			Title: mangadex.LocalizedString{"en": englishTitle},
		},
		Relationships: []mangadex.Relationship{
			{ID: "c-" + id, Type: "cover_art", Attributes: json.RawMessage(fmt.Sprintf(`{"fileName":%q}`, coverFile))},
		},
	}
}

/*
TestFeed_EmptyFollowSetShortCircuits verifies a user following nothing gets
an empty feed with zero upstream traffic.
*/
func TestFeed_EmptyFollowSetShortCircuits(t *testing.T) {
	h := newHarness()

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID, follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.Equal(t, 0, result.Total)
	assert.False(t, result.HasMore)
	assert.Zero(t, h.upstream.mangaCalls)
	assert.Zero(t, h.upstream.feedCalls)
}

/*
TestFeed_MergesAndSortsNewestFirst verifies the canonical two-manga merge:
the later chapter leads regardless of which manga produced it.
*/
func TestFeed_MergesAndSortsNewestFirst(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1", "m-2"}
	h.upstream.mangas["m-1"] = makeManga("m-1", "Alpha", "a.jpg")
	h.upstream.mangas["m-2"] = makeManga("m-2", "Beta", "b.jpg")
	h.upstream.feeds["m-1"] = []mangadex.Chapter{
		makeChapter("c1", "m-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	h.upstream.feeds["m-2"] = []mangadex.Chapter{
		makeChapter("c2", "m-2", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID, follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "c2", result.Data[0].ChapterID)
	assert.Equal(t, "c1", result.Data[1].ChapterID)
	assert.Equal(t, 2, result.Total)
	assert.False(t, result.HasMore)

	// Enrichment from the bulk manga fetch.
	assert.Equal(t, "Beta", result.Data[0].MangaTitle)
	assert.Equal(t, "https://uploads.example.test/covers/m-2/b.jpg", result.Data[0].CoverURL)
	assert.Equal(t, []string{"Alpha Scans"}, result.Data[0].ScanlationGroups)
	assert.Equal(t, follow.SourceMangaDex, result.Data[0].Source)
}

/*
TestFeed_SortedDescendingAcrossPages verifies the global ordering invariant
and exact slice bounds: page 2 with limit 5 is items [5,10) of the sorted
array.
*/
func TestFeed_SortedDescendingAcrossPages(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1"}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var chapters []mangadex.Chapter
	for index := 0; index < 12; index++ {
		chapters = append(chapters, makeChapter(
			fmt.Sprintf("c%d", index), "m-1", base.Add(time.Duration(index)*time.Hour)))
	}
	h.upstream.feeds["m-1"] = chapters

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 2, Limit: 5})

	require.NoError(t, err)
	require.Len(t, result.Data, 5)
	assert.Equal(t, 12, result.Total)
	assert.True(t, result.HasMore)

	// Newest first means c11 heads page 1; page 2 holds c6..c2.
	assert.Equal(t, "c6", result.Data[0].ChapterID)
	assert.Equal(t, "c2", result.Data[4].ChapterID)

	for index := 1; index < len(result.Data); index++ {
		previous := result.Data[index-1].PublishAt
		current := result.Data[index].PublishAt
		assert.False(t, current.After(previous))
	}
}

/*
TestFeed_CacheKeyDeterministicAcrossLanguageOrder verifies two requests with
the same language set in different order share one cache entry: the second
request performs no upstream calls.
*/
func TestFeed_CacheKeyDeterministicAcrossLanguageOrder(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1"}
	h.upstream.feeds["m-1"] = []mangadex.Chapter{
		makeChapter("c1", "m-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	ctx := context.Background()

	_, err := h.service.GetFollowedMangaFeed(ctx, testUserID,
		follow.FeedQuery{Page: 1, Limit: 10, TranslatedLanguages: []string{"vi", "en"}})
	require.NoError(t, err)

	feedCallsAfterFirst := h.upstream.feedCalls

	result, err := h.service.GetFollowedMangaFeed(ctx, testUserID,
		follow.FeedQuery{Page: 1, Limit: 10, TranslatedLanguages: []string{"en", "vi", "en"}})
	require.NoError(t, err)

	assert.Equal(t, feedCallsAfterFirst, h.upstream.feedCalls)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "c1", result.Data[0].ChapterID)
}

/*
TestFeed_CacheFailureFallsThrough verifies a dead cache never surfaces: the
feed is rebuilt from the authoritative sources on every call.
*/
func TestFeed_CacheFailureFallsThrough(t *testing.T) {
	h := newHarness()
	h.cache.failAll = true
	h.repo.externalIDs = []string{"m-1"}
	h.upstream.feeds["m-1"] = []mangadex.Chapter{
		makeChapter("c1", "m-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "c1", result.Data[0].ChapterID)
}

/*
TestFeed_PerMangaFailureIsolated verifies one manga's upstream failure drops
only that manga's chapters.
*/
func TestFeed_PerMangaFailureIsolated(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1", "m-2"}
	h.upstream.failFeeds["m-1"] = true
	h.upstream.feeds["m-2"] = []mangadex.Chapter{
		makeChapter("c2", "m-2", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "c2", result.Data[0].ChapterID)
}

/*
TestFeed_CommentCountsJoined verifies per-chapter counts are joined in and
default to zero, including when the counter itself fails.
*/
func TestFeed_CommentCountsJoined(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1"}
	h.upstream.feeds["m-1"] = []mangadex.Chapter{
		makeChapter("c1", "m-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		makeChapter("c2", "m-1", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	h.counter.counts["c2"] = 7

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, 7, result.Data[0].CommentCount)
	assert.Equal(t, 0, result.Data[1].CommentCount)

	// Counter failure degrades to zeroes, not an error.
	h.counter.err = assert.AnError
	h.cache.values = map[string]string{}

	result, err = h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Data[0].CommentCount)
}

/*
TestFeed_MissingCoverDegrades verifies a failed bulk manga fetch still
produces feed items, just without titles or covers.
*/
func TestFeed_MissingCoverDegrades(t *testing.T) {
	h := newHarness()
	h.repo.externalIDs = []string{"m-1"}
	// No manga metadata registered: the bulk fetch returns nothing.
	h.upstream.feeds["m-1"] = []mangadex.Chapter{
		makeChapter("c1", "m-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	result, err := h.service.GetFollowedMangaFeed(context.Background(), testUserID,
		follow.FeedQuery{Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Empty(t, result.Data[0].MangaTitle)
	assert.Empty(t, result.Data[0].CoverURL)
}
