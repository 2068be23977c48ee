// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package mangadex

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(apiURL, authURL string) *Client {
	return NewClient(Config{
		BaseURL:    apiURL,
		AuthURL:    authURL,
		UploadsURL: "https://uploads.example.test",
	}, testLogger())
}

/*
TestRetryAfterFromHints verifies normalization of every hint shape the
upstream emits: delay-seconds, HTTP-date, Unix timestamp, and garbage.
*/
func TestRetryAfterFromHints(t *testing.T) {
	testCases := []struct {
		name     string
		hints    retryHints
		expected time.Duration
		approx   bool
	}{
		{
			name:     "delay seconds",
			hints:    retryHints{retryAfter: "3"},
			expected: 3 * time.Second,
		},
		{
			name:     "http date in the future",
			hints:    retryHints{retryAfter: time.Now().Add(5 * time.Second).UTC().Format(http.TimeFormat)},
			expected: 5 * time.Second,
			approx:   true,
		},
		{
			name:     "http date in the past clamps to default",
			hints:    retryHints{retryAfter: time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)},
			expected: defaultRetryAfter,
		},
		{
			name:     "unix timestamp reset header",
			hints:    retryHints{rateLimitReset: strconv.FormatInt(time.Now().Add(4*time.Second).Unix(), 10)},
			expected: 4 * time.Second,
			approx:   true,
		},
		{
			name:     "malformed header falls back to default",
			hints:    retryHints{retryAfter: "soon"},
			expected: defaultRetryAfter,
		},
		{
			name:     "no hints",
			hints:    retryHints{},
			expected: defaultRetryAfter,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := retryAfterFromHints(testCase.hints)
			if testCase.approx {
				// Wall-clock based hints lose a little precision between
				// formatting and parsing.
				assert.InDelta(t, testCase.expected.Seconds(), actual.Seconds(), 1.5)
				return
			}
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

/*
TestClient_NotFoundFailsFast verifies a 404 maps to ErrNotFound without
any retry.
*/
func TestClient_NotFoundFailsFast(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.GetMangaFeed(context.Background(), "gone-manga", FeedOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), calls.Load())
}

/*
TestClient_RateLimitReplaysOnce verifies a single 429 triggers exactly one
replay after the hinted delay, and the replay's result is returned.
*/
func TestClient_RateLimitReplaysOnce(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if calls.Add(1) == 1 {
			writer.Header().Set("Retry-After", "1")
			writer.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"result":"ok","data":[{"id":"c-1","type":"chapter","attributes":{"translatedLanguage":"en"}}],"limit":500,"offset":0,"total":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	started := time.Now()
	chapters, err := client.GetMangaFeed(context.Background(), "manga-1", FeedOptions{})

	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "c-1", chapters[0].ID)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(started), time.Second)
}

/*
TestClient_SecondRateLimitSurfaces verifies a repeated 429 is surfaced as an
error instead of looping.
*/
func TestClient_SecondRateLimitSurfaces(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.Header().Set("Retry-After", "1")
		writer.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.GetMangaFeed(context.Background(), "manga-1", FeedOptions{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(2), calls.Load())
}

/*
TestClient_UnauthorizedReauthenticatesOnce verifies the 401 → refresh →
replay-once pipeline against a stubbed token endpoint.
*/
func TestClient_UnauthorizedReauthenticatesOnce(t *testing.T) {
	var apiCalls, tokenCalls atomic.Int32

	authServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		tokenCalls.Add(1)
		require.Equal(t, tokenEndpointPath, request.URL.Path)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"access_token":"fresh-token","refresh_token":"fresh-refresh","expires_in":900}`))
	}))
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if apiCalls.Add(1) == 1 {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer fresh-token", request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"result":"ok","data":[],"limit":500,"offset":0,"total":0}`))
	}))
	defer apiServer.Close()

	client := NewClient(Config{
		BaseURL:      apiServer.URL,
		AuthURL:      authServer.URL,
		UploadsURL:   "https://uploads.example.test",
		Username:     "reader",
		Password:     "secret",
		ClientID:     "dokusha",
		ClientSecret: "dokusha-secret",
	}, testLogger())

	// Seed a stale token so the initial lazy login is skipped and the 401
	// path is exercised directly.
	client.storeTokens(tokenResponse{AccessToken: "stale-token"})

	chapters, err := client.GetMangaFeed(context.Background(), "manga-1", FeedOptions{})

	require.NoError(t, err)
	assert.Empty(t, chapters)
	assert.Equal(t, int32(2), apiCalls.Load())
	assert.Equal(t, int32(1), tokenCalls.Load())
}

/*
TestClient_GetMangaByIDs_QueryShape verifies the bulk lookup encodes ids[],
cover includes and the exact limit, and rejects oversized ID sets.
*/
func TestClient_GetMangaByIDs_QueryShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, []string{"m-1", "m-2"}, query["ids[]"])
		assert.Equal(t, "2", query.Get("limit"))
		assert.Contains(t, query["includes[]"], "cover_art")

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"result":"ok","data":[{"id":"m-1","type":"manga","attributes":{"title":{"en":"Alpha"}}}],"limit":2,"offset":0,"total":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	mangas, err := client.GetMangaByIDs(context.Background(), []string{"m-1", "m-2"})
	require.NoError(t, err)
	require.Len(t, mangas, 1)
	assert.Equal(t, "Alpha", mangas[0].DisplayTitle())

	// Oversized ID sets must be chunked by the caller.
	oversized := make([]string, MaxIDsPerMangaCall+1)
	_, err = client.GetMangaByIDs(context.Background(), oversized)
	require.Error(t, err)
}

/*
TestClient_GetMangaFeed_QueryShape verifies language filters, the creation
lower bound and the descending publish order are encoded as expected.
*/
func TestClient_GetMangaFeed_QueryShape(t *testing.T) {
	since := time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "/manga/manga-1/feed", request.URL.Path)
		assert.Equal(t, []string{"en", "vi"}, query["translatedLanguage[]"])
		assert.Equal(t, "2026-02-01T12:30:00", query.Get("createdAtSince"))
		assert.Equal(t, "desc", query.Get("order[publishAt]"))
		assert.Contains(t, query["includes[]"], "scanlation_group")
		assert.Equal(t, "500", query.Get("limit"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"result":"ok","data":[],"limit":500,"offset":0,"total":0}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.GetMangaFeed(context.Background(), "manga-1", FeedOptions{
		TranslatedLanguages: []string{"en", "vi"},
		CreatedAtSince:      since,
	})

	require.NoError(t, err)
}
