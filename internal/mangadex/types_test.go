// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package mangadex_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/dokusha/internal/mangadex"
)

/*
TestLocalizedString_Preferred verifies title resolution: English wins,
otherwise the lexicographically smallest language code, deterministically.
*/
func TestLocalizedString_Preferred(t *testing.T) {
	testCases := []struct {
		name      string
		localized mangadex.LocalizedString
		expected  string
	}{
		{
			name:      "english preferred",
			localized: mangadex.LocalizedString{"ja": "ワンピース", "en": "One Piece"},
			expected:  "One Piece",
		},
		{
			name:      "deterministic fallback without english",
			localized: mangadex.LocalizedString{"ja": "ワンピース", "fr": "One Piece FR"},
			expected:  "One Piece FR",
		},
		{
			name:      "skips empty values",
			localized: mangadex.LocalizedString{"en": "", "ja": "ワンピース"},
			expected:  "ワンピース",
		},
		{
			name:      "empty map",
			localized: mangadex.LocalizedString{},
			expected:  "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.localized.Preferred())
		})
	}
}

/*
TestManga_CoverURL verifies cover URL construction from an expanded
cover_art relationship.
*/
func TestManga_CoverURL(t *testing.T) {
	manga := mangadex.Manga{
		ID: "manga-1",
		Relationships: []mangadex.Relationship{
			{ID: "a-1", Type: "author"},
			{ID: "c-1", Type: "cover_art", Attributes: json.RawMessage(`{"fileName":"cover.jpg"}`)},
		},
	}

	assert.Equal(t, "https://uploads.mangadex.org/covers/manga-1/cover.jpg",
		manga.CoverURL("https://uploads.mangadex.org"))
}

/*
TestManga_CoverURL_MissingRelationship verifies the empty-string fallback
when no cover was included in the response.
*/
func TestManga_CoverURL_MissingRelationship(t *testing.T) {
	manga := mangadex.Manga{
		ID: "manga-1",
		Relationships: []mangadex.Relationship{
			// cover_art present but not expanded (no includes[] in the call)
			{ID: "c-1", Type: "cover_art"},
		},
	}

	assert.Empty(t, manga.CoverURL("https://uploads.mangadex.org"))
}

/*
TestChapter_ScanlationGroups verifies group extraction filters by type and
by presence of a name.
*/
func TestChapter_ScanlationGroups(t *testing.T) {
	chapter := mangadex.Chapter{
		ID: "chapter-1",
		Relationships: []mangadex.Relationship{
			{ID: "g-1", Type: "scanlation_group", Attributes: json.RawMessage(`{"name":"Alpha Scans"}`)},
			{ID: "g-2", Type: "scanlation_group", Attributes: json.RawMessage(`{"name":""}`)},
			{ID: "g-3", Type: "scanlation_group"},
			{ID: "m-1", Type: "manga"},
			{ID: "g-4", Type: "scanlation_group", Attributes: json.RawMessage(`{"name":"Beta TL"}`)},
		},
	}

	assert.Equal(t, []string{"Alpha Scans", "Beta TL"}, chapter.ScanlationGroups())
}

/*
TestChapter_MangaID verifies parent manga extraction from relationships.
*/
func TestChapter_MangaID(t *testing.T) {
	chapter := mangadex.Chapter{
		Relationships: []mangadex.Relationship{
			{ID: "g-1", Type: "scanlation_group"},
			{ID: "m-9", Type: "manga"},
		},
	}

	require.Equal(t, "m-9", chapter.MangaID())
	assert.Empty(t, (&mangadex.Chapter{}).MangaID())
}
