package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table         string
	ID            string
	Title         string
	AltTitle      string
	Slug          string
	Year          string
	Status        string
	ContentRating string
	Description   string
	CoverURL      string
	FollowCount   string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:         "core.manga",
	ID:            "id",
	Title:         "title",
	AltTitle:      "titlealt",
	Slug:          "slug",
	Year:          "year",
	Status:        "status",
	ContentRating: "contentrating",
	Description:   "description",
	CoverURL:      "coverurl",
	FollowCount:   "followcount",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
}

func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.AltTitle, t.Slug, t.Year, t.Status, t.ContentRating,
		t.Description, t.CoverURL, t.FollowCount, t.CreatedAt, t.UpdatedAt,
	}
}
