// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package manga

import "context"

// Repository is the persistence contract for the local catalog.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error)
	FindByID(context context.Context, id string) (*Manga, error)
	FindBySlug(context context.Context, slug string) (*Manga, error)
	Exists(context context.Context, id string) (bool, error)
	Create(context context.Context, manga *Manga) error
	Update(context context.Context, manga *Manga) error
	SoftDelete(context context.Context, id string) error
}
