// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package follow implements manga subscriptions and the personalized chapter feed.

A follow ties a user to one manga, which lives either in the local catalog or
in the upstream catalog; the source field discriminates the two. The feed
side aggregates new chapters across everything a user follows upstream:
fan-out to the catalog API under its rate limits, merge, sort, enrich with
local comment counts, and cache the merged result with invalidation on any
follow mutation.
*/
package follow

import "time"

// Source discriminates which catalog owns a followed manga.
type Source string

const (
	// SourceLocal marks a manga hosted in Dokusha's own catalog.
	SourceLocal Source = "local"

	// SourceMangaDex marks a manga mirrored read-only from the upstream catalog.
	SourceMangaDex Source = "mangadex"
)

// Valid reports whether the source is a known discriminator value.
func (source Source) Valid() bool {
	return source == SourceLocal || source == SourceMangaDex
}

// Validation field names for error details.
const (
	FieldMangaID = "manga_id"
	FieldSource  = "source"
)

const (
	// MaxListLimit caps the page size of the follow list endpoint.
	MaxListLimit = 50

	// FeedCacheTTL bounds how stale a cached feed may get before a rebuild.
	FeedCacheTTL = 5 * time.Minute
)

// Follow represents that a user is tracking one manga.
//
// Exactly one of LocalMangaID / ExternalMangaID is set, matching Source.
// (user, manga, source) is unique: a user cannot follow the same manga twice.
type Follow struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	LocalMangaID    *string   `json:"local_manga_id"`
	ExternalMangaID *string   `json:"external_manga_id"`
	Source          Source    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

// MangaIdentifier returns whichever manga ID the record carries.
func (follow *Follow) MangaIdentifier() string {
	if follow.Source == SourceLocal && follow.LocalMangaID != nil {
		return *follow.LocalMangaID
	}
	if follow.ExternalMangaID != nil {
		return *follow.ExternalMangaID
	}
	return ""
}

// Status is the result of a follow existence check.
type Status struct {
	IsFollowing bool    `json:"is_following"`
	FollowID    *string `json:"follow_id,omitempty"`
}

// ChapterFeedItem is a denormalized, read-only projection of one upstream
// chapter for feed display. It is constructed fresh per cache miss and never
// persisted beyond the cache TTL.
type ChapterFeedItem struct {
	ChapterID          string    `json:"chapter_id"`
	ChapterNumber      *string   `json:"chapter_number"`
	Volume             *string   `json:"volume"`
	Title              *string   `json:"title"`
	PublishAt          time.Time `json:"publish_at"`
	ReadableAt         time.Time `json:"readable_at"`
	ExternalURL        *string   `json:"external_url"`
	MangaID            string    `json:"manga_id"`
	MangaTitle         string    `json:"manga_title"`
	CoverURL           string    `json:"cover_url,omitempty"`
	TranslatedLanguage string    `json:"translated_language"`
	ScanlationGroups   []string  `json:"scanlation_groups"`
	CommentCount       int       `json:"comment_count"`
	Source             Source    `json:"source"`
}

// Date range selectors for the feed's freshness bound.
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// FeedQuery filters one feed request.
type FeedQuery struct {
	// Page is 1-indexed.
	Page int
	// Limit caps items per page (≤100, default 20).
	Limit int
	// DateRange is one of RangeToday/RangeWeek/RangeMonth or "" for the
	// configured default lookback window.
	DateRange string
	// TranslatedLanguages restricts chapters to these language codes.
	TranslatedLanguages []string
}

// FeedResult is one page of the aggregated feed.
type FeedResult struct {
	Data    []ChapterFeedItem `json:"data"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}
