package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/conf"
)

func newTestSession(t *testing.T) (*mcp.ClientSession, *Server, *app.App) {
	t.Helper()
	lark := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/open-apis/auth/v3/tenant_access_token/internal":
			_, _ = io.WriteString(w, `{"code":0,"tenant_access_token":"t-mcptest000000000000","expire":7200}`)
		case "/open-apis/im/v1/messages":
			_, _ = io.WriteString(w, `{"code":0,"data":{"message_id":"om_mcp","chat_id":"oc_bot","create_time":"1760000000000"}}`)
		case "/open-apis/im/v1/files":
			_, _ = io.WriteString(w, `{"code":0,"data":{"file_key":"file_1"}}`)
		case "/open-apis/bot/v3/info":
			_, _ = io.WriteString(w, `{"code":0,"bot":{"app_name":"MemoBot","avatar_url":"","open_id":"ou_bot"}}`)
		case "/open-apis/im/v1/chats":
			_, _ = io.WriteString(w, `{"code":0,"data":{"items":[{"chat_id":"oc_team","name":"Team","chat_mode":"group"}],"has_more":false}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":404,"msg":"not found"}`)
		}
	}))
	t.Cleanup(lark.Close)

	cfg := conf.Default()
	cfg.Lark.Domain = lark.URL
	cfg.Lark.AppID = "cli_mcp"
	cfg.Lark.AppSecret = "good"
	cfg.Lark.ReceiveID = "me@example.com"
	cfg.Store.Dir = t.TempDir()

	a, err := app.New(cfg, app.Options{HTTPClient: lark.Client()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	s := NewServer(a.Service, "test", nil)
	s.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local) }

	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs, s, a
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error result", name)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListTools(t *testing.T) {
	cs, _, _ := newTestSession(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"larkmemo_send_memo",
		"larkmemo_list_chats",
		"larkmemo_search_history",
		"larkmemo_list_templates",
		"larkmemo_render_template",
		"larkmemo_list_custom_chats",
	}, names)
}

func TestSendMemo_RecordsHistory(t *testing.T) {
	cs, _, _ := newTestSession(t)

	out := callTool[SendMemoOutput](t, cs, "larkmemo_send_memo", map[string]any{"text": "from mcp"})
	assert.True(t, out.Success)
	assert.Equal(t, "om_mcp", out.MessageID)
	assert.Equal(t, "me@example.com", out.Destination)

	hist := callTool[SearchHistoryOutput](t, cs, "larkmemo_search_history", map[string]any{"query": "mcp"})
	require.Equal(t, 1, hist.Total)
	assert.Equal(t, "from mcp", hist.Entries[0].Content)
	assert.True(t, hist.Entries[0].Success)
}

func TestSendMemo_WithFile(t *testing.T) {
	cs, _, _ := newTestSession(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("attached"), 0o644))

	out := callTool[SendMemoOutput](t, cs, "larkmemo_send_memo", map[string]any{
		"text":       "with file",
		"file_paths": []string{path},
	})
	assert.True(t, out.Success)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "notes.txt", out.Files[0].Name)
	assert.Equal(t, "file_1", out.Files[0].Key)
}

func TestSendMemo_FailureIsReported(t *testing.T) {
	cs, _, _ := newTestSession(t)

	out := callTool[SendMemoOutput](t, cs, "larkmemo_send_memo", map[string]any{})
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)

	out = callTool[SendMemoOutput](t, cs, "larkmemo_send_memo", map[string]any{
		"text":       "x",
		"file_paths": []string{filepath.Join(t.TempDir(), "missing.pdf")},
	})
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestListChats(t *testing.T) {
	cs, _, _ := newTestSession(t)

	out := callTool[ListChatsOutput](t, cs, "larkmemo_list_chats", nil)
	require.NotEmpty(t, out.Chats)
	assert.Equal(t, "me@example.com", out.Chats[0].ChatID)
	assert.True(t, out.Chats[0].IsDefault)
	assert.Equal(t, "MemoBot", out.Chats[0].Description)

	var ids []string
	for _, c := range out.Chats {
		ids = append(ids, c.ChatID)
	}
	assert.Contains(t, ids, "oc_team")
}

func TestTemplates(t *testing.T) {
	cs, _, _ := newTestSession(t)

	list := callTool[ListTemplatesOutput](t, cs, "larkmemo_list_templates", nil)
	assert.NotEmpty(t, list.Templates)
	assert.True(t, list.Templates[0].IsPreset)

	rendered := callTool[RenderTemplateOutput](t, cs, "larkmemo_render_template", map[string]any{"id": "daily-report"})
	assert.Contains(t, rendered.Content, "2026/10/15")

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "larkmemo_render_template",
		Arguments: map[string]any{"id": "nope"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListCustomChats(t *testing.T) {
	cs, _, a := newTestSession(t)

	out := callTool[ListCustomChatsOutput](t, cs, "larkmemo_list_custom_chats", nil)
	assert.Empty(t, out.CustomChats)

	_, err := a.Service.Usecases().CustomChat.Create(context.Background(), domain.CustomChat{
		Name: "Team", Type: domain.CustomChatGroup, ChatID: "oc_team",
	})
	require.NoError(t, err)

	out = callTool[ListCustomChatsOutput](t, cs, "larkmemo_list_custom_chats", nil)
	require.Len(t, out.CustomChats, 1)
	assert.Equal(t, "Team", out.CustomChats[0].Name)
}
