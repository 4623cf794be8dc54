package data

import (
	"context"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

type settingsRepo struct {
	kv *kv
}

// newSettingsRepo creates the local settings override repository
func newSettingsRepo(s *kv) repo.SettingsRepo {
	return &settingsRepo{kv: s}
}

func (r *settingsRepo) LoadOverride(ctx context.Context) (domain.SettingsOverride, error) {
	o, _, err := load(ctx, r.kv, keySettings, func(o domain.SettingsOverride) error {
		return o.Validate()
	})
	return o, err
}

func (r *settingsRepo) SaveOverride(ctx context.Context, o domain.SettingsOverride) error {
	return save(ctx, r.kv, keySettings, o)
}

func (r *settingsRepo) SelectedChatID(ctx context.Context) (string, error) {
	id, _, err := load(ctx, r.kv, keySelectedChat, nonEmpty)
	return id, err
}

func (r *settingsRepo) SetSelectedChatID(ctx context.Context, chatID string) error {
	if chatID == "" {
		return r.kv.store.Delete(ctx, keySelectedChat)
	}
	return save(ctx, r.kv, keySelectedChat, chatID)
}
