package schema

// LibraryFollowTable represents the 'library.follow' table
type LibraryFollowTable struct {
	Table           string
	ID              string
	UserID          string
	LocalMangaID    string
	ExternalMangaID string
	Source          string
	CreatedAt       string
}

// LibraryFollow is the schema definition for library.follow
var LibraryFollow = LibraryFollowTable{
	Table:           "library.follow",
	ID:              "id",
	UserID:          "userid",
	LocalMangaID:    "localmangaid",
	ExternalMangaID: "externalmangaid",
	Source:          "source",
	CreatedAt:       "createdat",
}

func (t LibraryFollowTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.LocalMangaID, t.ExternalMangaID, t.Source, t.CreatedAt,
	}
}
