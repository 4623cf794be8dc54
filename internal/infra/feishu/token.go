package feishu

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

const (
	tenantTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

	defaultTokenTTL   = 2 * time.Hour
	tokenSafetyMargin = 60 * time.Second
)

// FetchTenantToken exchanges app credentials for a tenant access token
func (c *Client) FetchTenantToken(ctx context.Context, creds domain.Credentials) (string, time.Duration, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return "", 0, &domain.ConfigurationError{Fields: missing}
	}

	body := map[string]string{"app_id": creds.AppID, "app_secret": creds.AppSecret}
	status, raw, err := c.doJSON(ctx, http.MethodPost, BaseURL(creds.Domain)+tenantTokenPath, "", body)
	if err != nil {
		return "", 0, &domain.AuthenticationError{StatusCode: status, Msg: err.Error()}
	}

	var result struct {
		apiEnvelope
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, &domain.AuthenticationError{StatusCode: status, Msg: "invalid token response: " + truncateBody(raw)}
	}
	if !isSuccessStatus(status) || result.Code != 0 {
		return "", 0, &domain.AuthenticationError{StatusCode: status, Code: result.Code, Msg: result.Msg}
	}
	if result.TenantAccessToken == "" {
		return "", 0, &domain.AuthenticationError{StatusCode: status, Msg: "empty tenant_access_token"}
	}

	ttl := time.Duration(result.Expire) * time.Second
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return result.TenantAccessToken, ttl, nil
}

// TokenFetcher fetches a fresh tenant token and its lifetime
type TokenFetcher interface {
	FetchTenantToken(ctx context.Context, creds domain.Credentials) (string, time.Duration, error)
}

// TokenCache caches tenant tokens per (domain, app id)
type TokenCache struct {
	fetcher TokenFetcher
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]domain.AccessToken
}

var _ repo.TokenRepo = (*TokenCache)(nil)

// NewTokenCache creates a token cache; now may be nil
func NewTokenCache(fetcher TokenFetcher, now func() time.Time, logger *slog.Logger) *TokenCache {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenCache{
		fetcher: fetcher,
		now:     now,
		logger:  logger,
		entries: make(map[string]domain.AccessToken),
	}
}

func tokenKey(creds domain.Credentials) string {
	return BaseURL(creds.Domain) + "|" + strings.TrimSpace(creds.AppID)
}

// Token returns a cached token or fetches a new one.
// Fetches are serialized, so concurrent callers share one request.
func (tc *TokenCache) Token(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	key := tokenKey(creds)
	now := tc.now()
	if tok, ok := tc.entries[key]; ok && tok.Valid(now) {
		return tok, nil
	}
	delete(tc.entries, key)

	value, ttl, err := tc.fetcher.FetchTenantToken(ctx, creds)
	if err != nil {
		return domain.AccessToken{}, err
	}

	life := ttl - tokenSafetyMargin
	if life < 0 {
		life = 0
	}
	tok := domain.AccessToken{
		Value:     value,
		Domain:    creds.Domain,
		AppID:     creds.AppID,
		ExpiresAt: now.Add(life),
	}
	tc.entries[key] = tok
	tc.logger.Debug("tenant token fetched", slog.String("app_id", creds.AppID), slog.Duration("ttl", life))
	return tok, nil
}

// Invalidate evicts the cached token for creds
func (tc *TokenCache) Invalidate(creds domain.Credentials) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	delete(tc.entries, tokenKey(creds))
}

func truncateBody(raw []byte) string {
	const n = 200
	if len(raw) > n {
		return string(raw[:n]) + "..."
	}
	return string(raw)
}
