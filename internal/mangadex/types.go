// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package mangadex

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// # Localized Content

// LocalizedString is a language-code → text map as returned by the catalog
// (e.g. {"en": "One Piece", "ja": "ワンピース"}).
type LocalizedString map[string]string

// Preferred resolves the display text: English first, otherwise the value
// under the lexicographically smallest language code so the choice is
// deterministic across calls.
func (localized LocalizedString) Preferred() string {
	if text, ok := localized["en"]; ok && text != "" {
		return text
	}

	keys := make([]string, 0, len(localized))
	for key := range localized {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if localized[key] != "" {
			return localized[key]
		}
	}

	return ""
}

// # Relationships

// Relationship links a resource to another catalog entity. The catalog uses
// JSON-API style typed relationship arrays; Attributes is only populated when
// the relationship type was requested via an includes[] parameter.
type Relationship struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// coverAttributes is the expanded payload of a cover_art relationship.
type coverAttributes struct {
	FileName string `json:"fileName"`
}

// groupAttributes is the expanded payload of a scanlation_group relationship.
type groupAttributes struct {
	Name string `json:"name"`
}

// # Manga

// MangaAttributes holds the descriptive fields of an upstream manga.
type MangaAttributes struct {
	Title                        LocalizedString   `json:"title"`
	AltTitles                    []LocalizedString `json:"altTitles"`
	Description                  LocalizedString   `json:"description"`
	Status                       string            `json:"status"`
	Year                         int               `json:"year"`
	ContentRating                string            `json:"contentRating"`
	OriginalLanguage             string            `json:"originalLanguage"`
	LastChapter                  string            `json:"lastChapter"`
	AvailableTranslatedLanguages []string          `json:"availableTranslatedLanguages"`
}

// Manga is a single upstream catalog manga resource.
type Manga struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    MangaAttributes `json:"attributes"`
	Relationships []Relationship  `json:"relationships"`
}

// DisplayTitle resolves the manga title via [LocalizedString.Preferred].
func (manga *Manga) DisplayTitle() string {
	return manga.Attributes.Title.Preferred()
}

/*
CoverURL builds the full cover image URL for this manga.

Description: Requires the list call to have been made with
includes[]=cover_art; returns "" when no expanded cover relationship
is present so callers render without a cover instead of failing.

Parameters:
  - uploadsBaseURL: string (e.g. "https://uploads.mangadex.org")

Returns:
  - string: Absolute cover URL, or "" when unavailable
*/
func (manga *Manga) CoverURL(uploadsBaseURL string) string {
	for _, relationship := range manga.Relationships {
		if relationship.Type != "cover_art" || len(relationship.Attributes) == 0 {
			continue
		}

		var cover coverAttributes
		if err := json.Unmarshal(relationship.Attributes, &cover); err != nil || cover.FileName == "" {
			continue
		}

		return fmt.Sprintf("%s/covers/%s/%s", uploadsBaseURL, manga.ID, cover.FileName)
	}

	return ""
}

// # Chapters

// ChapterAttributes holds the descriptive fields of an upstream chapter.
type ChapterAttributes struct {
	Title              *string   `json:"title"`
	Volume             *string   `json:"volume"`
	Chapter            *string   `json:"chapter"`
	TranslatedLanguage string    `json:"translatedLanguage"`
	ExternalURL        *string   `json:"externalUrl"`
	Pages              int       `json:"pages"`
	PublishAt          time.Time `json:"publishAt"`
	ReadableAt         time.Time `json:"readableAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Chapter is a single upstream catalog chapter resource.
type Chapter struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Attributes    ChapterAttributes `json:"attributes"`
	Relationships []Relationship    `json:"relationships"`
}

// MangaID extracts the parent manga UUID from the relationship array.
// Returns "" when the chapter carries no manga relationship.
func (chapter *Chapter) MangaID() string {
	for _, relationship := range chapter.Relationships {
		if relationship.Type == "manga" {
			return relationship.ID
		}
	}
	return ""
}

/*
ScanlationGroups extracts the credited translation group names.

Description: Filters relationships by type scanlation_group and keeps only
entries whose expanded attributes carry a non-empty name. Requires the feed
call to have been made with includes[]=scanlation_group.

Returns:
  - []string: Group names in relationship order (may be empty)
*/
func (chapter *Chapter) ScanlationGroups() []string {
	var names []string

	for _, relationship := range chapter.Relationships {
		if relationship.Type != "scanlation_group" || len(relationship.Attributes) == 0 {
			continue
		}

		var group groupAttributes
		if err := json.Unmarshal(relationship.Attributes, &group); err != nil || group.Name == "" {
			continue
		}

		names = append(names, group.Name)
	}

	return names
}

// # Response Envelopes

// mangaListResponse is the wire envelope of a manga list call.
type mangaListResponse struct {
	Result string  `json:"result"`
	Data   []Manga `json:"data"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Total  int     `json:"total"`
}

// chapterListResponse is the wire envelope of a chapter feed call.
type chapterListResponse struct {
	Result string    `json:"result"`
	Data   []Chapter `json:"data"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Total  int       `json:"total"`
}

// tokenResponse is the wire shape of the OAuth token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
