package service

import (
	"context"
	"log/slog"

	"github.com/flashlark/larkmemo/internal/biz"
	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// MemoService is the entry point shared by the CLI, the HTTP API and the MCP server
type MemoService struct {
	uc     *biz.Usecases
	logger *slog.Logger
}

// NewMemoService creates a new memo service
func NewMemoService(uc *biz.Usecases, logger *slog.Logger) *MemoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoService{uc: uc, logger: logger}
}

// Usecases exposes the underlying usecases
func (s *MemoService) Usecases() *biz.Usecases {
	return s.uc
}

// SendOutcome is a send result plus the bot reply observed afterwards, if any
type SendOutcome struct {
	*domain.SendResult
	Reply *domain.BotReply `json:"reply,omitempty"`
}

// Send delivers a memo. With waitReply set, a send to the bot chat waits
// briefly for the bot to answer.
func (s *MemoService) Send(ctx context.Context, req domain.MemoRequest, waitReply bool) (*SendOutcome, error) {
	result, err := s.uc.Memo.Send(ctx, req)
	if err != nil {
		return &SendOutcome{SendResult: result}, err
	}

	out := &SendOutcome{SendResult: result}
	if waitReply && result.BotChat && result.Text != nil && result.Text.ChatID != "" {
		if reply, ok := s.uc.Memo.WaitForReply(ctx, result.Text.ChatID, result.Text.CreateTime); ok {
			out.Reply = reply
		}
	}
	return out, nil
}

// ListChats returns the selectable chats in display order
func (s *MemoService) ListChats(ctx context.Context) (*domain.ChatListResult, error) {
	settings, err := s.uc.Settings.Effective(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.uc.ChatList.List(ctx, settings)
	if err != nil {
		return nil, err
	}

	recent, err := s.uc.History.RecentChatOrder(ctx)
	if err != nil {
		s.logger.Warn("load recent chats failed", slog.Any("error", err))
	}
	result.Chats = domain.SortChats(result.Chats, recent)

	for _, w := range result.Warnings {
		s.logger.Warn("chat list incomplete", slog.String("sweep", w.Sweep), slog.Int("page", w.Page), slog.Any("error", w.Err))
	}
	return result, nil
}

// Close waits for background work started by the service
func (s *MemoService) Close() {
	s.uc.ChatList.Wait()
}
