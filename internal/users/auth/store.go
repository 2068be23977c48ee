// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package auth

import (
	"context"
	"time"
)

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	Create(context context.Context, user *User) error
	FindByID(context context.Context, id string) (*User, error)
	FindByEmail(context context.Context, email string) (*User, error)
	FindByUsername(context context.Context, username string) (*User, error)
}

// Session is one refresh-token grant held server-side.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRepository is the volatile store for refresh sessions.
//
// Sessions are disposable: losing the store logs users out, nothing worse,
// which is why they live in Redis rather than Postgres.
type SessionRepository interface {
	Save(context context.Context, token string, session Session, ttl time.Duration) error
	Find(context context.Context, token string) (*Session, error)
	Delete(context context.Context, token string) error
}
