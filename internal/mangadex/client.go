// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package mangadex implements the upstream catalog HTTP client.

It is the only place in Dokusha that talks to the external MangaDex API, and
it owns every resilience concern of that conversation:

  - Lazy OAuth password-grant login with a single shared in-flight
    authentication (singleflight) across concurrent callers.
  - 401 → token refresh and a single replay of the original request.
  - 429 → retry-after aware backoff and a single replay; a second 429 is
    surfaced as an error rather than looping.
  - 404 → fail-fast [ErrNotFound] without retries or noisy logging
    (expected for deleted or private upstream resources).
  - Local request pacing via a token bucket, cooperative with the upstream
    service's published limits. Pacing is per-process only.

Callers receive either decoded resources or an error; no HTTP detail leaks
past this package.
*/
package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrNotFound reports that the upstream resource does not exist (deleted or
// private). Callers match it with [errors.Is] and must not retry.
var ErrNotFound = errors.New("mangadex: resource not found")

const (
	// requestTimeout bounds every single upstream HTTP exchange.
	requestTimeout = 10 * time.Second

	// defaultRetryAfter applies when a 429 carries no usable hint.
	defaultRetryAfter = 1000 * time.Millisecond

	// requestsPerSecond paces outgoing calls below the documented
	// 5 req/s global limit of the upstream API.
	requestsPerSecond = 4

	// MaxIDsPerMangaCall is the upstream cap on ids[] per manga list call.
	// Callers must chunk larger ID sets.
	MaxIDsPerMangaCall = 100

	// MaxFeedLimit is the upstream cap on items per chapter feed call.
	MaxFeedLimit = 500
)

// timestampLayout is the upstream's expected createdAtSince format
// (RFC 3339 without a zone designator).
const timestampLayout = "2006-01-02T15:04:05"

// # Client

// Config carries the endpoints and optional credentials of the upstream API.
type Config struct {
	BaseURL      string
	AuthURL      string
	UploadsURL   string
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// Client is a resilient, rate-limit-aware MangaDex API client.
// Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	flight     singleflight.Group
	logger     *slog.Logger

	tokenMu      sync.Mutex
	accessToken  string
	refreshToken string
}

// NewClient constructs a [Client]. Credentials in cfg are optional; without
// them the client operates anonymously against public endpoints.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:     logger,
	}
}

// UploadsBaseURL exposes the CDN host for building cover URLs.
func (client *Client) UploadsBaseURL() string {
	return client.cfg.UploadsURL
}

// # Catalog Operations

/*
GetMangaByIDs bulk-fetches manga resources with expanded cover art.

Parameters:
  - context: context.Context
  - ids: []string (at most [MaxIDsPerMangaCall] identifiers)

Returns:
  - []Manga: Matched resources (missing IDs are silently absent)
  - error: ErrNotFound, or upstream/transport failures
*/
func (client *Client) GetMangaByIDs(context context.Context, ids []string) ([]Manga, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxIDsPerMangaCall {
		return nil, fmt.Errorf("mangadex: at most %d ids per call, got %d", MaxIDsPerMangaCall, len(ids))
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(len(ids)))
	for _, id := range ids {
		query.Add("ids[]", id)
	}
	query.Add("includes[]", "cover_art")

	body, err := client.do(context, http.MethodGet, "/manga", query)
	if err != nil {
		return nil, err
	}

	var envelope mangaListResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("mangadex: decode manga list: %w", err)
	}

	return envelope.Data, nil
}

// FeedOptions filters a per-manga chapter feed call.
type FeedOptions struct {
	// Limit caps returned items; clamped to [MaxFeedLimit], defaulted to it
	// when zero.
	Limit int
	// TranslatedLanguages restricts chapters to the given language codes.
	TranslatedLanguages []string
	// CreatedAtSince drops chapters created before this instant (zero = no bound).
	CreatedAtSince time.Time
}

/*
GetMangaFeed fetches the chapter feed of a single manga, newest first, with
expanded scanlation group credits.

Parameters:
  - context: context.Context
  - mangaID: string
  - options: FeedOptions

Returns:
  - []Chapter: Chapters ordered by publishAt descending
  - error: ErrNotFound, or upstream/transport failures
*/
func (client *Client) GetMangaFeed(context context.Context, mangaID string, options FeedOptions) ([]Chapter, error) {
	limit := options.Limit
	if limit <= 0 || limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("order[publishAt]", "desc")
	query.Add("includes[]", "scanlation_group")

	for _, language := range options.TranslatedLanguages {
		query.Add("translatedLanguage[]", language)
	}

	if !options.CreatedAtSince.IsZero() {
		query.Set("createdAtSince", options.CreatedAtSince.UTC().Format(timestampLayout))
	}

	body, err := client.do(context, http.MethodGet, "/manga/"+mangaID+"/feed", query)
	if err != nil {
		return nil, err
	}

	var envelope chapterListResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("mangadex: decode chapter feed: %w", err)
	}

	return envelope.Data, nil
}

// # Request Pipeline

/*
do executes one upstream call with the full resilience pipeline.

Description: Waits on the local rate limiter, attaches the bearer token when
held, then dispatches. A 401 triggers one shared re-authentication and one
replay; a 429 triggers one retry-after-bounded wait and one replay. A 404
short-circuits to [ErrNotFound]. Any other non-2xx status is an upstream
failure.

Parameters:
  - context: context.Context
  - method, path: string (path is relative to the API base)
  - query: url.Values

Returns:
  - []byte: Raw response body on success
  - error: ErrNotFound or transport/upstream failures
*/
func (client *Client) do(context context.Context, method, path string, query url.Values) ([]byte, error) {
	if err := client.ensureAuthenticated(context); err != nil {
		// Anonymous access still works for public endpoints; log and proceed.
		client.logger.Warn("mangadex_auth_failed_proceeding_anonymously",
			slog.String("error", err.Error()),
		)
	}

	body, status, hints, err := client.dispatch(context, method, path, query)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusUnauthorized:
		if err := client.reauthenticate(context); err != nil {
			return nil, fmt.Errorf("mangadex: re-authentication failed: %w", err)
		}
		return client.replay(context, method, path, query)

	case http.StatusTooManyRequests:
		delay := retryAfterFromHints(hints)
		client.logger.Warn("mangadex_rate_limited",
			slog.String("path", path),
			slog.Int64("wait_ms", delay.Milliseconds()),
		)
		select {
		case <-time.After(delay):
		case <-context.Done():
			return nil, context.Err()
		}
		return client.replay(context, method, path, query)

	case http.StatusNotFound:
		return nil, ErrNotFound
	}

	if status < 200 || status > 299 {
		return nil, fmt.Errorf("mangadex: upstream returned status %d for %s", status, path)
	}

	return body, nil
}

// replay re-issues the request exactly once; a repeated 401/429 is an error.
func (client *Client) replay(context context.Context, method, path string, query url.Values) ([]byte, error) {
	body, status, _, err := client.dispatch(context, method, path, query)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status < 200 || status > 299:
		return nil, fmt.Errorf("mangadex: upstream returned status %d for %s after retry", status, path)
	}

	return body, nil
}

// dispatch performs a single paced HTTP exchange and drains the body.
func (client *Client) dispatch(context context.Context, method, path string, query url.Values) ([]byte, int, retryHints, error) {
	var hints retryHints

	if err := client.limiter.Wait(context); err != nil {
		return nil, 0, hints, err
	}

	endpoint := client.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(context, method, endpoint, nil)
	if err != nil {
		return nil, 0, hints, fmt.Errorf("mangadex: build request: %w", err)
	}

	if token := client.bearerToken(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, 0, hints, fmt.Errorf("mangadex: request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, hints, fmt.Errorf("mangadex: read response: %w", err)
	}

	hints = retryHints{
		retryAfter:     response.Header.Get("Retry-After"),
		rateLimitReset: response.Header.Get("X-RateLimit-Retry-After"),
	}

	return body, response.StatusCode, hints, nil
}

// # Retry-After Normalization

// retryHints captures the rate-limit headers of one upstream response.
type retryHints struct {
	retryAfter     string
	rateLimitReset string
}

/*
retryAfterFromHints normalizes the upstream's rate-limit hints into a wait
duration.

Description: Precedence is Retry-After as delay-seconds, then Retry-After as
an HTTP-date, then X-RateLimit-Retry-After as a Unix timestamp. Absent or
malformed hints fall back to [defaultRetryAfter]. Past timestamps clamp to
the default rather than returning zero.

Parameters:
  - hints: retryHints

Returns:
  - time.Duration: How long to wait before the single replay
*/
func retryAfterFromHints(hints retryHints) time.Duration {
	if hints.retryAfter != "" {
		if seconds, err := strconv.Atoi(hints.retryAfter); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		if when, err := http.ParseTime(hints.retryAfter); err == nil {
			if wait := time.Until(when); wait > 0 {
				return wait
			}
			return defaultRetryAfter
		}
	}

	if hints.rateLimitReset != "" {
		if unixSeconds, err := strconv.ParseInt(hints.rateLimitReset, 10, 64); err == nil {
			if wait := time.Until(time.Unix(unixSeconds, 0)); wait > 0 {
				return wait
			}
			return defaultRetryAfter
		}
	}

	return defaultRetryAfter
}
