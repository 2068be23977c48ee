// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package comment

import "context"

// Repository is the persistence contract for comments.
type Repository interface {
	Create(context context.Context, comment *Comment) error
	FindByID(context context.Context, id string) (*Comment, error)
	ListByChapter(context context.Context, chapterID string, limit, offset int) ([]*Comment, int, error)
	SoftDelete(context context.Context, id, userID string) error

	// CountByChapterIDs returns chapterID → live comment count in one grouped
	// query. Chapters with no comments are absent from the map.
	CountByChapterIDs(context context.Context, chapterIDs []string) (map[string]int, error)
}
