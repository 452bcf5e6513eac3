package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ClientCredentialsConfig holds the app registration used to obtain
// application tokens.
type ClientCredentialsConfig struct {
	AuthorityHost string
	TenantID      string
	ClientID      string
	ClientSecret  string
	Scope         string
	HTTPClient    *http.Client
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// ClientCredentialsTokenProvider returns a TokenProvider implementing the
// OAuth2 client-credentials flow with in-memory caching.
func ClientCredentialsTokenProvider(cfg ClientCredentialsConfig) TokenProvider {
	scope := cfg.Scope
	if scope == "" {
		scope = "https://graph.microsoft.com/.default"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	tokenURL := strings.TrimRight(cfg.AuthorityHost, "/") + "/" + cfg.TenantID + "/oauth2/v2.0/token"

	var mu sync.Mutex
	var cached cachedToken

	return func(ctx context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if cached.value != "" && time.Now().Before(cached.expiresAt) {
			return cached.value, nil
		}

		form := url.Values{
			"client_id":     {cfg.ClientID},
			"client_secret": {cfg.ClientSecret},
			"scope":         {scope},
			"grant_type":    {"client_credentials"},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("token request failed: status=%d body=%s", resp.StatusCode, truncate(string(body), 256))
		}

		var payload struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", err
		}
		if payload.AccessToken == "" {
			return "", fmt.Errorf("token response contained no access token")
		}

		// Refresh a minute early.
		cached = cachedToken{
			value:     payload.AccessToken,
			expiresAt: time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute),
		}
		return cached.value, nil
	}
}
