// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package comment manages user discussion threads on manga and chapters.

Besides the usual CRUD surface it exposes a grouped per-chapter count used to
enrich the follow feed; that path must stay a single query regardless of how
many chapters a feed page touches.
*/
package comment

import "time"

// Validation field names for error details.
const (
	FieldBody      = "body"
	FieldChapterID = "chapter_id"
)

// Comment is one user-authored message attached to a manga or chapter.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MangaID   *string   `json:"manga_id"`
	ChapterID *string   `json:"chapter_id"`
	ParentID  *string   `json:"parent_id"`
	Body      string    `json:"body"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Username is joined in for display; not a column of the comment table.
	Username string `json:"username,omitempty"`
}
