// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// # OAuth Token Lifecycle

// tokenEndpointPath is the OpenID Connect token endpoint on the auth host.
const tokenEndpointPath = "/realms/mangadex/protocol/openid-connect/token"

// hasCredentials reports whether the client is configured for authenticated
// access. Without credentials all calls go out anonymously.
func (client *Client) hasCredentials() bool {
	return client.cfg.Username != "" && client.cfg.Password != "" &&
		client.cfg.ClientID != "" && client.cfg.ClientSecret != ""
}

// bearerToken returns the current access token ("" when unauthenticated).
func (client *Client) bearerToken() string {
	client.tokenMu.Lock()
	defer client.tokenMu.Unlock()
	return client.accessToken
}

// storeTokens swaps in a freshly issued token pair.
func (client *Client) storeTokens(token tokenResponse) {
	client.tokenMu.Lock()
	defer client.tokenMu.Unlock()
	client.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		client.refreshToken = token.RefreshToken
	}
}

/*
ensureAuthenticated lazily performs the password grant.

Description: Concurrent callers share one in-flight login via singleflight,
so a burst of requests at startup produces a single token request instead of
N duplicate logins. A no-op when credentials are absent or a token is
already cached.

Parameters:
  - context: context.Context

Returns:
  - error: Grant failures
*/
func (client *Client) ensureAuthenticated(context context.Context) error {
	if !client.hasCredentials() || client.bearerToken() != "" {
		return nil
	}

	_, err, _ := client.flight.Do("auth", func() (interface{}, error) {
		// Re-check under the flight: a sibling caller may have just logged in.
		if client.bearerToken() != "" {
			return nil, nil
		}
		return nil, client.passwordGrant(context)
	})

	return err
}

/*
reauthenticate discards the current token and obtains a new one.

Description: Called on a 401 response. Prefers the refresh grant when a
refresh token is held; falls back to a full password grant. Shared across
concurrent callers the same way as the initial login.

Parameters:
  - context: context.Context

Returns:
  - error: Grant failures
*/
func (client *Client) reauthenticate(context context.Context) error {
	if !client.hasCredentials() {
		return fmt.Errorf("mangadex: received 401 but no credentials are configured")
	}

	staleToken := client.bearerToken()

	_, err, _ := client.flight.Do("auth", func() (interface{}, error) {
		// A sibling caller already replaced the stale token.
		if current := client.bearerToken(); current != "" && current != staleToken {
			return nil, nil
		}

		client.tokenMu.Lock()
		refreshToken := client.refreshToken
		client.tokenMu.Unlock()

		if refreshToken != "" {
			if err := client.refreshGrant(context, refreshToken); err == nil {
				return nil, nil
			}
			client.logger.Warn("mangadex_refresh_grant_failed_falling_back")
		}

		return nil, client.passwordGrant(context)
	})

	return err
}

// passwordGrant exchanges the configured credentials for a token pair.
func (client *Client) passwordGrant(context context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", client.cfg.Username)
	form.Set("password", client.cfg.Password)
	form.Set("client_id", client.cfg.ClientID)
	form.Set("client_secret", client.cfg.ClientSecret)

	token, err := client.requestToken(context, form)
	if err != nil {
		return fmt.Errorf("mangadex: password grant failed: %w", err)
	}

	client.storeTokens(token)
	client.logger.Info("mangadex_authenticated")
	return nil
}

// refreshGrant exchanges the held refresh token for a new token pair.
func (client *Client) refreshGrant(context context.Context, refreshToken string) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", client.cfg.ClientID)
	form.Set("client_secret", client.cfg.ClientSecret)

	token, err := client.requestToken(context, form)
	if err != nil {
		return fmt.Errorf("mangadex: refresh grant failed: %w", err)
	}

	client.storeTokens(token)
	client.logger.Info("mangadex_token_refreshed")
	return nil
}

// requestToken posts a form-encoded grant to the token endpoint.
func (client *Client) requestToken(context context.Context, form url.Values) (tokenResponse, error) {
	var token tokenResponse

	endpoint := client.cfg.AuthURL + tokenEndpointPath
	request, err := http.NewRequestWithContext(context, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return token, err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return token, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return token, err
	}

	if response.StatusCode != http.StatusOK {
		client.logger.Error("mangadex_token_request_rejected",
			slog.Int("status", response.StatusCode),
		)
		return token, fmt.Errorf("token endpoint returned status %d", response.StatusCode)
	}

	if err := json.Unmarshal(body, &token); err != nil {
		return token, fmt.Errorf("decode token response: %w", err)
	}

	if token.AccessToken == "" {
		return token, fmt.Errorf("token endpoint returned an empty access token")
	}

	return token, nil
}
