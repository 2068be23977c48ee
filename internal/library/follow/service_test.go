// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/dokusha/internal/library/follow"
	"github.com/phamduc/dokusha/internal/mangadex"
	"github.com/phamduc/dokusha/internal/platform/apperr"
	"github.com/phamduc/dokusha/internal/platform/dberr"
)

// # Fakes

type fakeRepository struct {
	mu          sync.Mutex
	records     []*follow.Follow
	externalIDs []string
	listIDsErr  error
}

func recordKey(userID, mangaID string, source follow.Source) string {
	return userID + "|" + mangaID + "|" + string(source)
}

func (repo *fakeRepository) Create(_ context.Context, record *follow.Follow) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.records {
		if recordKey(existing.UserID, existing.MangaIdentifier(), existing.Source) ==
			recordKey(record.UserID, record.MangaIdentifier(), record.Source) {
			return &pgconn.PgError{Code: "23505"}
		}
	}

	record.CreatedAt = time.Now()
	repo.records = append(repo.records, record)
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, userID, mangaID string, source follow.Source) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for index, existing := range repo.records {
		if recordKey(existing.UserID, existing.MangaIdentifier(), existing.Source) == recordKey(userID, mangaID, source) {
			repo.records = append(repo.records[:index], repo.records[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeRepository) Find(_ context.Context, userID, mangaID string, source follow.Source) (*follow.Follow, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.records {
		if recordKey(existing.UserID, existing.MangaIdentifier(), existing.Source) == recordKey(userID, mangaID, source) {
			return existing, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (repo *fakeRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*follow.Follow, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var matching []*follow.Follow
	for index := len(repo.records) - 1; index >= 0; index-- {
		if repo.records[index].UserID == userID {
			matching = append(matching, repo.records[index])
		}
	}

	total := len(matching)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matching[offset:end], total, nil
}

func (repo *fakeRepository) ListExternalMangaIDs(_ context.Context, _ string) ([]string, error) {
	if repo.listIDsErr != nil {
		return nil, repo.listIDsErr
	}
	return repo.externalIDs, nil
}

type fakeCatalog struct {
	existing map[string]bool
}

func (catalog *fakeCatalog) MangaExists(_ context.Context, id string) (bool, error) {
	return catalog.existing[id], nil
}

// fakeCache implements cache.Store in memory, optionally failing every
// operation to exercise the best-effort contract.
type fakeCache struct {
	mu              sync.Mutex
	values          map[string]string
	deletedPrefixes []string
	failAll         bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (store *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failAll {
		return "", false, errors.New("cache down")
	}
	value, found := store.values[key]
	return value, found, nil
}

func (store *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failAll {
		return errors.New("cache down")
	}
	store.values[key] = value
	return nil
}

func (store *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failAll {
		return errors.New("cache down")
	}
	store.deletedPrefixes = append(store.deletedPrefixes, prefix)
	for key := range store.values {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(store.values, key)
		}
	}
	return nil
}

func (store *fakeCache) IsReady() bool { return !store.failAll }

type fakeUpstream struct {
	mu         sync.Mutex
	mangas     map[string]mangadex.Manga
	feeds      map[string][]mangadex.Chapter
	failFeeds  map[string]bool
	mangaCalls int
	feedCalls  int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		mangas:    map[string]mangadex.Manga{},
		feeds:     map[string][]mangadex.Chapter{},
		failFeeds: map[string]bool{},
	}
}

func (upstream *fakeUpstream) GetMangaByIDs(_ context.Context, ids []string) ([]mangadex.Manga, error) {
	upstream.mu.Lock()
	defer upstream.mu.Unlock()

	upstream.mangaCalls++
	var result []mangadex.Manga
	for _, id := range ids {
		if manga, ok := upstream.mangas[id]; ok {
			result = append(result, manga)
		}
	}
	return result, nil
}

func (upstream *fakeUpstream) GetMangaFeed(_ context.Context, mangaID string, _ mangadex.FeedOptions) ([]mangadex.Chapter, error) {
	upstream.mu.Lock()
	defer upstream.mu.Unlock()

	upstream.feedCalls++
	if upstream.failFeeds[mangaID] {
		return nil, errors.New("upstream unavailable")
	}
	return upstream.feeds[mangaID], nil
}

func (upstream *fakeUpstream) UploadsBaseURL() string { return "https://uploads.example.test" }

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (counter *fakeCounter) CountForChapters(_ context.Context, chapterIDs []string) (map[string]int, error) {
	if counter.err != nil {
		return nil, counter.err
	}

	result := make(map[string]int, len(chapterIDs))
	for _, id := range chapterIDs {
		result[id] = counter.counts[id]
	}
	return result, nil
}

// # Harness

type harness struct {
	repo     *fakeRepository
	catalog  *fakeCatalog
	cache    *fakeCache
	upstream *fakeUpstream
	counter  *fakeCounter
	service  *follow.Service
}

func newHarness() *harness {
	h := &harness{
		repo:     &fakeRepository{},
		catalog:  &fakeCatalog{existing: map[string]bool{}},
		cache:    newFakeCache(),
		upstream: newFakeUpstream(),
		counter:  &fakeCounter{counts: map[string]int{}},
	}
	h.service = follow.NewService(
		h.repo, h.catalog, h.cache, h.upstream, h.counter, 6,
		slog.New(slog.DiscardHandler),
	)
	return h
}

const (
	testUserID  = "0194d9ab-1111-7000-8000-000000000001"
	testMangaID = "0194d9ab-2222-7000-8000-000000000002"
)

// # Mutation Tests

/*
TestService_FollowThenIsFollowing verifies a fresh follow is immediately
observable with the created record's ID.
*/
func TestService_FollowThenIsFollowing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	record, err := h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	assert.Equal(t, testMangaID, record.MangaIdentifier())

	status, err := h.service.IsFollowing(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	require.NotNil(t, status.FollowID)
	assert.Equal(t, record.ID, *status.FollowID)
}

/*
TestService_DuplicateFollowConflicts verifies the second identical follow
raises Conflict.
*/
func TestService_DuplicateFollowConflicts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)

	_, err = h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

/*
TestService_FollowLocalRequiresManga verifies a local-source follow of a
nonexistent catalog entry raises NotFound.
*/
func TestService_FollowLocalRequiresManga(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceLocal)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)

	// Present in the catalog: the same call succeeds.
	h.catalog.existing[testMangaID] = true
	_, err = h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceLocal)
	assert.NoError(t, err)
}

/*
TestService_UnfollowLifecycle verifies unfollow of a missing relation raises
NotFound, and a successful unfollow makes IsFollowing report false.
*/
func TestService_UnfollowLifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	err := h.service.UnfollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)

	require.NoError(t, h.service.UnfollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex))

	status, err := h.service.IsFollowing(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)
	assert.Nil(t, status.FollowID)
}

/*
TestService_MutationsInvalidateFeedCache verifies follow and unfollow each
drop the user's cached feeds by prefix.
*/
func TestService_MutationsInvalidateFeedCache(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)
	require.NoError(t, h.service.UnfollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex))

	expectedPrefix := fmt.Sprintf("feed:follows:%s:", testUserID)
	assert.Equal(t, []string{expectedPrefix, expectedPrefix}, h.cache.deletedPrefixes)
}

/*
TestService_CacheFailureNeverFailsMutations verifies a dead cache degrades
invalidation silently instead of failing the follow.
*/
func TestService_CacheFailureNeverFailsMutations(t *testing.T) {
	h := newHarness()
	h.cache.failAll = true
	ctx := context.Background()

	record, err := h.service.FollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)

	assert.NoError(t, h.service.UnfollowManga(ctx, testUserID, testMangaID, follow.SourceMangaDex))
}

/*
TestService_FollowValidatesInput verifies malformed identifiers and unknown
sources are rejected before touching any store.
*/
func TestService_FollowValidatesInput(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.service.FollowManga(ctx, testUserID, "not-a-uuid", follow.SourceMangaDex)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = h.service.FollowManga(ctx, testUserID, testMangaID, follow.Source("webtoon"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// # Listing Tests

/*
TestService_ListFollowsPagination verifies page math and the limit cap of 50.
*/
func TestService_ListFollowsPagination(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// 60 follows across distinct manga.
	for index := 0; index < 60; index++ {
		mangaID := fmt.Sprintf("0194d9ab-3333-7000-8000-%012d", index)
		_, err := h.service.FollowManga(ctx, testUserID, mangaID, follow.SourceMangaDex)
		require.NoError(t, err)
	}

	// A limit of 1000 is clamped to 50.
	follows, metadata, err := h.service.ListFollows(ctx, testUserID, 1, 1000)
	require.NoError(t, err)
	assert.Len(t, follows, 50)
	assert.Equal(t, 50, metadata.Limit)
	assert.Equal(t, 60, metadata.Total)
	assert.True(t, metadata.HasMore)

	// The short final page reports no further rows.
	follows, metadata, err = h.service.ListFollows(ctx, testUserID, 2, 50)
	require.NoError(t, err)
	assert.Len(t, follows, 10)
	assert.False(t, metadata.HasMore)

	// Beyond the data: empty page, still no more.
	follows, metadata, err = h.service.ListFollows(ctx, testUserID, 3, 50)
	require.NoError(t, err)
	assert.Empty(t, follows)
	assert.False(t, metadata.HasMore)
}
