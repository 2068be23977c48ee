// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow

import "context"

// Repository is the persistence contract for follow records.
type Repository interface {
	// Create inserts a record; a duplicate (user, manga, source) surfaces
	// as a unique violation from the store.
	Create(context context.Context, follow *Follow) error

	// Delete removes a record, reporting whether one existed.
	Delete(context context.Context, userID, mangaID string, source Source) (bool, error)

	// Find returns the record for (user, manga, source), or dberr.ErrNotFound.
	Find(context context.Context, userID, mangaID string, source Source) (*Follow, error)

	// ListByUser returns the user's follows newest-first with the total count.
	ListByUser(context context.Context, userID string, limit, offset int) ([]*Follow, int, error)

	// ListExternalMangaIDs returns every upstream manga ID the user follows,
	// in follow-creation order.
	ListExternalMangaIDs(context context.Context, userID string) ([]string, error)
}
