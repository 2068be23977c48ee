// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phamduc/dokusha/internal/platform/apperr"
)

// RedisSessionRepository implements [SessionRepository] on the shared Redis
// client. Each session is one JSON value under an opaque token key with the
// TTL enforced by Redis itself.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository constructs a Redis backed session store.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Save persists a refresh session under its opaque token.

Parameters:
  - context: context.Context
  - token: string
  - session: Session
  - ttl: time.Duration

Returns:
  - error: Serialization or connectivity failures
*/
func (repository *RedisSessionRepository) Save(context context.Context, token string, session Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, sessionKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("session_save_failed: %w", err)
	}

	return nil
}

/*
Find loads the session stored under a refresh token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: Stored session
  - error: apperr.Unauthorized when the token is unknown or expired
*/
func (repository *RedisSessionRepository) Find(context context.Context, token string) (*Session, error) {
	payload, err := repository.client.Get(context, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.Unauthorized("Session expired or revoked")
		}
		return nil, fmt.Errorf("session_load_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(payload), session); err != nil {
		return nil, fmt.Errorf("session_decode_failed: %w", err)
	}

	return session, nil
}

/*
Delete revokes a refresh session.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Connectivity failures (revoking an absent token is not an error)
*/
func (repository *RedisSessionRepository) Delete(context context.Context, token string) error {
	if err := repository.client.Del(context, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session_delete_failed: %w", err)
	}
	return nil
}
