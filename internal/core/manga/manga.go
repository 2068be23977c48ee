// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package manga manages the locally-owned manga catalog.

Local manga are titles hosted by Dokusha itself, as opposed to upstream
entries mirrored read-only from the external catalog. Follows may point at
either kind; this package is the authority for the local kind.
*/
package manga

import "time"

// Validation field names for error details.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// Publication status values.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusHiatus    = "hiatus"
	StatusCancelled = "cancelled"
)

// Manga represents a locally-hosted title.
type Manga struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	AltTitle      *string    `json:"alt_title"`
	Slug          string     `json:"slug"`
	Year          *int       `json:"year"`
	Status        string     `json:"status"`
	ContentRating string     `json:"content_rating"`
	Description   *string    `json:"description"`
	CoverURL      *string    `json:"cover_url"`
	FollowCount   int        `json:"follow_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

// Filter narrows catalog list queries.
type Filter struct {
	// Query matches against title (substring, case-insensitive).
	Query string
	// Status restricts to one publication status when non-empty.
	Status string
}
