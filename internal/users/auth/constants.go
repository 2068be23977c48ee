// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package auth

import "time"

// Validation field names for error details.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

const (
	// AccessTokenTTL bounds how long a signed access token stays valid.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL bounds how long a refresh session survives in Redis.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// sessionKeyPrefix namespaces refresh sessions in the shared Redis keyspace.
	sessionKeyPrefix = "auth:session:"
)
