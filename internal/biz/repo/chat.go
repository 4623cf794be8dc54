package repo

import (
	"context"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// ChatItem is one entry of a chat list page, as returned by the API
type ChatItem struct {
	ChatID      string
	Name        string
	Description string
	AvatarURL   string
	ChatMode    string
	ChatType    string
}

// ChatPage is one page of the chat list
type ChatPage struct {
	Items     []ChatItem
	PageToken string
	HasMore   bool
}

// ChatRepo is the chat directory interface
type ChatRepo interface {
	// ListChatsPage fetches one page; chatType filters by kind when not empty
	ListChatsPage(ctx context.Context, tok domain.AccessToken, chatType, pageToken string, pageSize int) (*ChatPage, error)

	// BotInfo fetches the profile of the app's bot
	BotInfo(ctx context.Context, tok domain.AccessToken) (*domain.BotInfo, error)
}

// BotInfoRepo persists fetched bot profiles
type BotInfoRepo interface {
	// Get returns the stored entry, or nil when there is none
	Get(ctx context.Context, appID, receiverID string) (*domain.CachedBotInfo, error)
	Put(ctx context.Context, info *domain.CachedBotInfo) error
	Delete(ctx context.Context, appID, receiverID string) error

	// DeleteOthers drops entries owned by any other (app id, receiver id) pair
	DeleteOthers(ctx context.Context, appID, receiverID string) (int, error)
}
