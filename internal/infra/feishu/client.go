package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
	xlog "github.com/flashlark/larkmemo/internal/log"
)

const maxResponseBody = 4 << 20

// Options configure the Lark API client
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the Lark API client.
// Message send and read go through the SDK; token, upload, chat list, bot
// info and webhook calls are plain HTTP.
type Client struct {
	http   *http.Client
	logger *slog.Logger

	mu   sync.Mutex
	sdks map[string]*lark.Client // keyed by base URL and app id
}

var (
	_ repo.MessageRepo = (*Client)(nil)
	_ repo.UploadRepo  = (*Client)(nil)
	_ repo.ChatRepo    = (*Client)(nil)
	_ repo.WebhookRepo = (*Client)(nil)
)

// NewClient creates a new Lark API client
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   hc,
		logger: logger,
		sdks:   make(map[string]*lark.Client),
	}
}

// BaseURL resolves a configured domain to an open platform base URL.
// The shorthands "lark" and "feishu" select the public endpoints.
func BaseURL(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "":
		return domain.DefaultDomain
	case "lark":
		return lark.LarkBaseUrl
	case "feishu":
		return lark.FeishuBaseUrl
	}
	return strings.TrimRight(strings.TrimSpace(d), "/")
}

// sdk returns the SDK client for the token's endpoint.
// The SDK token cache is off; every request carries the caller's token.
func (c *Client) sdk(tok domain.AccessToken) *lark.Client {
	base := BaseURL(tok.Domain)
	key := base + "|" + tok.AppID

	c.mu.Lock()
	defer c.mu.Unlock()
	if cli, ok := c.sdks[key]; ok {
		return cli
	}
	cli := lark.NewClient(tok.AppID, "",
		lark.WithOpenBaseUrl(base),
		lark.WithEnableTokenCache(false),
		lark.WithLogLevel(larkcore.LogLevelError),
		lark.WithLogger(&xlog.LarkLogger{Logger: c.logger}),
		lark.WithHttpClient(c.http),
	)
	c.sdks[key] = cli
	return cli
}

// apiEnvelope is the common {code, msg} wrapper of Lark JSON responses
type apiEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// doJSON performs a request and returns the status and raw body.
// A transport error is returned as is; status handling is left to the caller.
func (c *Client) doJSON(ctx context.Context, method, url, token string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
