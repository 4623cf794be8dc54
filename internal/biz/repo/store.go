package repo

import (
	"context"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// HistoryRepo persists the message history log, newest first
type HistoryRepo interface {
	Load(ctx context.Context) ([]domain.HistoryEntry, error)
	Save(ctx context.Context, entries []domain.HistoryEntry) error
	Clear(ctx context.Context) error
}

// CustomChatRepo persists user-managed custom chats
type CustomChatRepo interface {
	Load(ctx context.Context) ([]domain.CustomChat, error)
	Save(ctx context.Context, chats []domain.CustomChat) error
	Clear(ctx context.Context) error
}

// TemplateRepo persists user templates and the selected template pointer
type TemplateRepo interface {
	Load(ctx context.Context) ([]domain.Template, error)
	Save(ctx context.Context, templates []domain.Template) error

	// SelectedID returns "" when nothing is selected
	SelectedID(ctx context.Context) (string, error)
	SetSelectedID(ctx context.Context, id string) error
}

// SettingsRepo persists the local settings override layer
type SettingsRepo interface {
	LoadOverride(ctx context.Context) (domain.SettingsOverride, error)
	SaveOverride(ctx context.Context, o domain.SettingsOverride) error

	// SelectedChatID returns "" when no chat was selected yet
	SelectedChatID(ctx context.Context) (string, error)
	SetSelectedChatID(ctx context.Context, chatID string) error
}
