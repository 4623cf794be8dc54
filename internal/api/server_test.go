package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/conf"
)

func newTestServer(t *testing.T, secret string) (http.Handler, *app.App) {
	t.Helper()
	lark := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/open-apis/auth/v3/tenant_access_token/internal":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["app_secret"] != "good" {
				_, _ = io.WriteString(w, `{"code":10014,"msg":"app secret invalid"}`)
				return
			}
			_, _ = io.WriteString(w, `{"code":0,"tenant_access_token":"t-apitest000000000000","expire":7200}`)
		case "/open-apis/im/v1/messages":
			_, _ = io.WriteString(w, `{"code":0,"data":{"message_id":"om_1","chat_id":"oc_bot","create_time":"1760000000000"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":404,"msg":"not found"}`)
		}
	}))
	t.Cleanup(lark.Close)

	cfg := conf.Default()
	cfg.Lark.Domain = lark.URL
	cfg.Lark.AppID = "cli_api"
	cfg.Lark.AppSecret = secret
	cfg.Lark.ReceiveID = "me@example.com"
	cfg.Store.Dir = t.TempDir()

	a, err := app.New(cfg, app.Options{HTTPClient: lark.Client()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return NewServer(a.Service, nil, "127.0.0.1:0").Router(), a
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, "good")
	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendMemo(t *testing.T) {
	h, _ := newTestServer(t, "good")

	w := do(t, h, http.MethodPost, "/api/memo", map[string]any{"text": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		BotChat bool `json:"bot_chat"`
		Text    struct {
			MessageID string `json:"message_id"`
		} `json:"text"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.BotChat)
	assert.Equal(t, "om_1", out.Text.MessageID)

	w = do(t, h, http.MethodGet, "/api/history?q=hell", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Entries []domain.HistoryEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Entries, 1)
	assert.True(t, hist.Entries[0].Success)

	w = do(t, h, http.MethodDelete, "/api/history/"+hist.Entries[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/api/history/"+hist.Entries[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMemo_ErrorMapping(t *testing.T) {
	h, _ := newTestServer(t, "bad")

	w := do(t, h, http.MethodPost, "/api/memo", map[string]any{"text": "hello"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/api/memo", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/memo", map[string]any{
		"files": []map[string]any{{"name": "a.txt", "data": "%%%"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/memo", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsStatus(t *testing.T) {
	h, a := newTestServer(t, "good")
	require.NoError(t, a.Service.Usecases().Settings.Set(t.Context(), "receive_id_type", "email"))

	w := do(t, h, http.MethodGet, "/api/settings/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status domain.SetupStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Complete)
}

func TestCustomChats(t *testing.T) {
	h, _ := newTestServer(t, "good")

	w := do(t, h, http.MethodPost, "/api/custom-chats", map[string]any{"name": "Team", "type": "group", "chat_id": "oc_team"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created domain.CustomChat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, h, http.MethodPut, "/api/custom-chats/"+created.ID, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, "/api/custom-chats/"+created.ID, map[string]any{"type": "webhook"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/custom-chats", nil)
	var list struct {
		CustomChats []domain.CustomChat `json:"custom_chats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.CustomChats, 1)
	assert.Equal(t, "Renamed", list.CustomChats[0].Name)

	w = do(t, h, http.MethodDelete, "/api/custom-chats/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodPut, "/api/custom-chats/"+created.ID, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplates(t *testing.T) {
	h, _ := newTestServer(t, "good")

	w := do(t, h, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Templates []domain.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.NotEmpty(t, list.Templates)

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/templates/%s/render", list.Templates[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/templates/nope/render", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Entity: "memo"}, http.StatusBadRequest},
		{&domain.ConfigurationError{Fields: []string{"app_id"}}, http.StatusPreconditionFailed},
		{&domain.AuthenticationError{Code: 10014}, http.StatusUnauthorized},
		{&domain.DeliveryError{StatusCode: 400}, http.StatusBadGateway},
		{&domain.UploadError{Kind: domain.UploadErrorHTTP}, http.StatusBadGateway},
		{fmt.Errorf("get: %w", domain.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestSendMemo_SizeComesFromPayload(t *testing.T) {
	h, a := newTestServer(t, "good")

	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{'x'}, 11*1024*1024))
	w := do(t, h, http.MethodPost, "/api/memo", map[string]any{
		"text":  "oversized",
		"files": []map[string]any{{"name": "big.pdf", "size": 1, "data": big}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "declares 1 bytes")

	w = do(t, h, http.MethodPost, "/api/memo", map[string]any{
		"text":  "oversized",
		"files": []map[string]any{{"name": "big.pdf", "data": big}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "big.pdf is too large")

	w = do(t, h, http.MethodPost, "/api/memo", map[string]any{
		"text":  "understated",
		"files": []map[string]any{{"name": "b.pdf", "size": 1, "data": "aGVsbG8="}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "declares 1 bytes but carries 5")

	w = do(t, h, http.MethodPost, "/api/memo", map[string]any{
		"text":  "negative",
		"files": []map[string]any{{"name": "n.pdf", "size": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := a.Service.Usecases().History.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected memos never reach the send path")
}

func TestListChats_TokenFailureIsAWarning(t *testing.T) {
	h, _ := newTestServer(t, "bad")

	w := do(t, h, http.MethodGet, "/api/chats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Chats    []domain.ChatSummary `json:"chats"`
		Warnings []string             `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Chats)
	require.Len(t, body.Warnings, 1)
	assert.Contains(t, body.Warnings[0], "10014")
}
