package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// Sweep names reported in PartialListError
const (
	SweepAll = "all"
	SweepP2P = "p2p"

	// SweepToken labels the warning of a listing that could not get a token
	SweepToken = "token"
)

// ChatListConfig tunes the chat listing
type ChatListConfig struct {
	PageSize       int
	MaxPages       int
	P2PSweep       bool
	BotInfoTTL     time.Duration
	RefreshTimeout time.Duration
}

// DefaultChatListConfig returns the default listing configuration
func DefaultChatListConfig() ChatListConfig {
	return ChatListConfig{
		PageSize:       50,
		MaxPages:       10,
		P2PSweep:       true,
		BotInfoTTL:     domain.BotInfoTTL,
		RefreshTimeout: 10 * time.Second,
	}
}

// ChatListUsecase builds the list of selectable destinations
type ChatListUsecase struct {
	chats  repo.ChatRepo
	bots   repo.BotInfoRepo
	tokens repo.TokenRepo
	cfg    ChatListConfig
	logger *slog.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

// NewChatListUsecase creates a new chat list usecase
func NewChatListUsecase(
	chats repo.ChatRepo,
	bots repo.BotInfoRepo,
	tokens repo.TokenRepo,
	cfg ChatListConfig,
	logger *slog.Logger,
) *ChatListUsecase {
	def := DefaultChatListConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.BotInfoTTL <= 0 {
		cfg.BotInfoTTL = def.BotInfoTTL
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = def.RefreshTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatListUsecase{
		chats:  chats,
		bots:   bots,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// List fetches a token for settings and lists the chats.
// Only missing credentials are an error; a token failure yields an empty list with a warning.
func (uc *ChatListUsecase) List(ctx context.Context, settings domain.Settings) (*domain.ChatListResult, error) {
	creds := settings.Credentials()
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, &domain.ConfigurationError{Fields: missing}
	}
	tok, err := uc.tokens.Token(ctx, creds)
	if err != nil {
		uc.logger.Warn("chat list token fetch failed", slog.Any("error", err))
		return &domain.ChatListResult{
			Chats:    []domain.ChatSummary{},
			Warnings: []*domain.PartialListError{{Sweep: SweepToken, Err: err}},
		}, nil
	}
	return uc.ListChats(ctx, tok, settings), nil
}

// ListChats returns the default entry followed by the swept chats, deduplicated.
// Page failures end their sweep and are reported in Warnings.
func (uc *ChatListUsecase) ListChats(ctx context.Context, tok domain.AccessToken, settings domain.Settings) *domain.ChatListResult {
	result := &domain.ChatListResult{Chats: []domain.ChatSummary{}}
	seen := make(map[string]bool)

	receiverID := strings.TrimSpace(settings.ReceiveID)
	if receiverID != "" {
		result.Chats = append(result.Chats, uc.defaultEntry(ctx, tok, receiverID))
		seen[receiverID] = true
	}

	if w := uc.sweep(ctx, tok, SweepAll, "", seen, result); w != nil {
		result.Warnings = append(result.Warnings, w)
	}
	if uc.cfg.P2PSweep {
		if w := uc.sweep(ctx, tok, SweepP2P, "p2p", seen, result); w != nil {
			result.Warnings = append(result.Warnings, w)
		}
	}
	return result
}

// Wait blocks until background bot refreshes have finished
func (uc *ChatListUsecase) Wait() {
	uc.wg.Wait()
}

func (uc *ChatListUsecase) defaultEntry(ctx context.Context, tok domain.AccessToken, receiverID string) domain.ChatSummary {
	cached, err := uc.bots.Get(ctx, tok.AppID, receiverID)
	if err != nil {
		uc.logger.Warn("read bot info cache failed", slog.Any("error", err))
	}

	if cached != nil {
		if cached.IsFresh(tok.AppID, receiverID, uc.now(), uc.cfg.BotInfoTTL) {
			uc.refreshInBackground(ctx, tok, receiverID)
			return domain.DefaultChat(receiverID, &cached.Bot)
		}
		if err := uc.bots.Delete(ctx, tok.AppID, receiverID); err != nil {
			uc.logger.Warn("delete stale bot info failed", slog.Any("error", err))
		}
	}

	bot, err := uc.fetchBot(ctx, tok, receiverID)
	if err != nil {
		uc.logger.Warn("fetch bot info failed, using bare default entry",
			slog.String("receiver_id", receiverID),
			slog.Any("error", err),
		)
		return domain.DefaultChat(receiverID, nil)
	}
	return domain.DefaultChat(receiverID, bot)
}

// refreshInBackground updates the cached profile without blocking the listing
func (uc *ChatListUsecase) refreshInBackground(ctx context.Context, tok domain.AccessToken, receiverID string) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.RefreshTimeout)
		defer cancel()

		if _, err := uc.fetchBot(refreshCtx, tok, receiverID); err != nil {
			uc.logger.Warn("background bot info refresh failed", slog.Any("error", err))
			return
		}
		uc.logger.Debug("bot info refreshed", slog.String("receiver_id", receiverID))
	}()
}

func (uc *ChatListUsecase) fetchBot(ctx context.Context, tok domain.AccessToken, receiverID string) (*domain.BotInfo, error) {
	bot, err := uc.chats.BotInfo(ctx, tok)
	if err != nil {
		uc.maybeInvalidate(tok, err)
		return nil, err
	}

	entry := &domain.CachedBotInfo{Bot: *bot, AppID: tok.AppID, ReceiverID: receiverID, FetchedAt: uc.now()}
	if err := uc.bots.Put(ctx, entry); err != nil {
		uc.logger.Warn("store bot info failed", slog.Any("error", err))
	}
	if n, err := uc.bots.DeleteOthers(ctx, tok.AppID, receiverID); err != nil {
		uc.logger.Warn("purge old bot info failed", slog.Any("error", err))
	} else if n > 0 {
		uc.logger.Debug("purged bot info of previous configuration", slog.Int("count", n))
	}
	return bot, nil
}

func (uc *ChatListUsecase) sweep(
	ctx context.Context,
	tok domain.AccessToken,
	name, chatType string,
	seen map[string]bool,
	result *domain.ChatListResult,
) *domain.PartialListError {
	pageToken := ""
	for page := 1; page <= uc.cfg.MaxPages; page++ {
		p, err := uc.chats.ListChatsPage(ctx, tok, chatType, pageToken, uc.cfg.PageSize)
		if err != nil {
			uc.maybeInvalidate(tok, err)
			uc.logger.Warn("chat list sweep stopped",
				slog.String("sweep", name),
				slog.Int("page", page),
				slog.Any("error", err),
			)
			return &domain.PartialListError{Sweep: name, Page: page, Err: err}
		}

		for _, item := range p.Items {
			if item.ChatID == "" || seen[item.ChatID] {
				continue
			}
			seen[item.ChatID] = true
			result.Chats = append(result.Chats, toSummary(item))
		}

		if !p.HasMore || p.PageToken == "" {
			return nil
		}
		pageToken = p.PageToken
	}
	return nil
}

func (uc *ChatListUsecase) maybeInvalidate(tok domain.AccessToken, err error) {
	if code, ok := domain.CodeOf(err); ok && domain.IsInvalidTokenCode(code) {
		uc.tokens.Invalidate(domain.Credentials{Domain: tok.Domain, AppID: tok.AppID})
	}
}

func toSummary(item repo.ChatItem) domain.ChatSummary {
	kind := item.ChatMode
	if kind == "" {
		kind = item.ChatType
	}
	name := item.Name
	if name == "" {
		name = item.ChatID
	}
	return domain.ChatSummary{
		ChatID:      item.ChatID,
		Name:        name,
		Description: item.Description,
		Kind:        domain.ResolveChatKind(kind, item.ChatID),
		AvatarURL:   item.AvatarURL,
	}
}
