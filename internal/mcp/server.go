package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/service"
)

// Server exposes memo operations as MCP tools
type Server struct {
	server *mcp.Server
	svc    *service.MemoService
	logger *slog.Logger
	now    func() time.Time
}

// NewServer creates a new MCP server and registers its tools
func NewServer(svc *service.MemoService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "larkmemo", Version: version}, nil),
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves one session over t
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_send_memo",
		Description: "Send a memo to Lark. Without a destination it goes to the configured default recipient. Destination may be a chat id or a custom chat id.",
	}, s.handleSendMemo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_list_chats",
		Description: "List the chats a memo can be sent to, default recipient first.",
	}, s.handleListChats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_search_history",
		Description: "Search sent memos by content or destination name. An empty query lists the newest entries.",
	}, s.handleSearchHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_list_templates",
		Description: "List preset and user memo templates.",
	}, s.handleListTemplates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_render_template",
		Description: "Render a template, filling in {{date}}, {{time}} and {{datetime}}.",
	}, s.handleRenderTemplate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "larkmemo_list_custom_chats",
		Description: "List user-defined custom chats and webhooks.",
	}, s.handleListCustomChats)
}

// SendMemoInput is the input for larkmemo_send_memo
type SendMemoInput struct {
	Text        string   `json:"text,omitempty" jsonschema:"the memo text"`
	Destination string   `json:"destination,omitempty" jsonschema:"chat id or custom chat id; empty for the default recipient"`
	FilePaths   []string `json:"file_paths,omitempty" jsonschema:"local files to attach"`
	WaitReply   bool     `json:"wait_reply,omitempty" jsonschema:"wait briefly for the bot to reply"`
}

// SendMemoOutput is the output for larkmemo_send_memo
type SendMemoOutput struct {
	Success         bool                `json:"success"`
	Destination     string              `json:"destination,omitempty"`
	DestinationName string              `json:"destination_name,omitempty"`
	MessageID       string              `json:"message_id,omitempty"`
	Files           []domain.FileResult `json:"files,omitempty"`
	Reply           string              `json:"reply,omitempty"`
	Error           string              `json:"error,omitempty"`
}

func (s *Server) handleSendMemo(ctx context.Context, req *mcp.CallToolRequest, input SendMemoInput) (*mcp.CallToolResult, SendMemoOutput, error) {
	memo := domain.MemoRequest{Text: input.Text, Destination: input.Destination}
	for _, p := range input.FilePaths {
		f, err := domain.LoadAttachment(p)
		if err != nil {
			return nil, SendMemoOutput{Error: err.Error()}, nil
		}
		memo.Files = append(memo.Files, *f)
	}

	out, err := s.svc.Send(ctx, memo, input.WaitReply)
	if err != nil {
		s.logger.Warn("mcp send memo failed", slog.Any("error", err))
		return nil, SendMemoOutput{Error: err.Error()}, nil
	}

	result := SendMemoOutput{
		Success:         true,
		Destination:     out.Destination,
		DestinationName: out.DestinationName,
		Files:           out.Files,
	}
	if out.Text != nil {
		result.MessageID = out.Text.MessageID
	}
	if out.Reply != nil {
		result.Reply = out.Reply.Preview
	}
	return nil, result, nil
}

// ListChatsInput is empty
type ListChatsInput struct{}

// ChatItem is one selectable chat
type ChatItem struct {
	ChatID      string `json:"chat_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"chat_type"`
	IsDefault   bool   `json:"is_default"`
}

// ListChatsOutput contains the selectable chats
type ListChatsOutput struct {
	Chats    []ChatItem `json:"chats"`
	Warnings []string   `json:"warnings,omitempty"`
}

func (s *Server) handleListChats(ctx context.Context, req *mcp.CallToolRequest, input ListChatsInput) (*mcp.CallToolResult, ListChatsOutput, error) {
	result, err := s.svc.ListChats(ctx)
	if err != nil {
		return nil, ListChatsOutput{}, err
	}
	out := ListChatsOutput{Chats: make([]ChatItem, 0, len(result.Chats))}
	for _, c := range result.Chats {
		out.Chats = append(out.Chats, ChatItem{
			ChatID:      c.ChatID,
			Name:        c.Name,
			Description: c.Description,
			Kind:        string(c.Kind),
			IsDefault:   c.IsDefault,
		})
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return nil, out, nil
}

// SearchHistoryInput is the input for larkmemo_search_history
type SearchHistoryInput struct {
	Query string `json:"query,omitempty" jsonschema:"text to match against content or destination name"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum entries to return (default 20)"`
}

// HistoryItem is one recorded send
type HistoryItem struct {
	ID              string `json:"id"`
	Content         string `json:"content"`
	Destination     string `json:"destination"`
	DestinationName string `json:"destination_name,omitempty"`
	Timestamp       string `json:"timestamp"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

// SearchHistoryOutput contains matching history entries
type SearchHistoryOutput struct {
	Entries []HistoryItem `json:"entries"`
	Total   int           `json:"total"`
}

func (s *Server) handleSearchHistory(ctx context.Context, req *mcp.CallToolRequest, input SearchHistoryInput) (*mcp.CallToolResult, SearchHistoryOutput, error) {
	entries, err := s.svc.Usecases().History.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchHistoryOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	out := SearchHistoryOutput{Entries: []HistoryItem{}, Total: len(entries)}
	for i, e := range entries {
		if i == limit {
			break
		}
		out.Entries = append(out.Entries, HistoryItem{
			ID:              e.ID,
			Content:         e.Content,
			Destination:     e.Destination,
			DestinationName: e.DestinationName,
			Timestamp:       e.Timestamp.Format(time.RFC3339),
			Success:         e.Success,
			Error:           e.Error,
		})
	}
	return nil, out, nil
}

// ListTemplatesInput is empty
type ListTemplatesInput struct{}

// TemplateItem is one template
type TemplateItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
	IsPreset bool   `json:"is_preset"`
}

// ListTemplatesOutput contains all templates
type ListTemplatesOutput struct {
	Templates []TemplateItem `json:"templates"`
}

func (s *Server) handleListTemplates(ctx context.Context, req *mcp.CallToolRequest, input ListTemplatesInput) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	templates, err := s.svc.Usecases().Template.List(ctx)
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}
	out := ListTemplatesOutput{Templates: make([]TemplateItem, 0, len(templates))}
	for _, t := range templates {
		out.Templates = append(out.Templates, TemplateItem{
			ID: t.ID, Name: t.Name, Category: t.Category, Content: t.Content, IsPreset: t.IsPreset,
		})
	}
	return nil, out, nil
}

// RenderTemplateInput is the input for larkmemo_render_template
type RenderTemplateInput struct {
	ID string `json:"id" jsonschema:"template id"`
}

// RenderTemplateOutput contains the rendered text
type RenderTemplateOutput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (s *Server) handleRenderTemplate(ctx context.Context, req *mcp.CallToolRequest, input RenderTemplateInput) (*mcp.CallToolResult, RenderTemplateOutput, error) {
	content, err := s.svc.Usecases().Template.Render(ctx, input.ID, s.now())
	if err != nil {
		return nil, RenderTemplateOutput{}, fmt.Errorf("render template %s: %w", input.ID, err)
	}
	return nil, RenderTemplateOutput{ID: input.ID, Content: content}, nil
}

// ListCustomChatsInput is empty
type ListCustomChatsInput struct{}

// CustomChatItem is one custom chat; Target is its chat id or webhook URL
type CustomChatItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Target      string `json:"target"`
	Description string `json:"description,omitempty"`
}

// ListCustomChatsOutput contains the custom chats
type ListCustomChatsOutput struct {
	CustomChats []CustomChatItem `json:"custom_chats"`
}

func (s *Server) handleListCustomChats(ctx context.Context, req *mcp.CallToolRequest, input ListCustomChatsInput) (*mcp.CallToolResult, ListCustomChatsOutput, error) {
	chats, err := s.svc.Usecases().CustomChat.List(ctx)
	if err != nil {
		return nil, ListCustomChatsOutput{}, err
	}
	out := ListCustomChatsOutput{CustomChats: make([]CustomChatItem, 0, len(chats))}
	for _, c := range chats {
		out.CustomChats = append(out.CustomChats, CustomChatItem{
			ID: c.ID, Name: c.Name, Type: string(c.Type), Target: c.Target(), Description: c.Description,
		})
	}
	return nil, out, nil
}
