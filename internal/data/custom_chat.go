package data

import (
	"context"
	"fmt"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

type customChatRepo struct {
	kv *kv
}

// newCustomChatRepo creates the custom chat repository
func newCustomChatRepo(s *kv) repo.CustomChatRepo {
	return &customChatRepo{kv: s}
}

func (r *customChatRepo) Load(ctx context.Context) ([]domain.CustomChat, error) {
	chats, _, err := load(ctx, r.kv, keyCustomChats, func(chats []domain.CustomChat) error {
		for i := range chats {
			if err := chats[i].ValidateStored(); err != nil {
				return fmt.Errorf("custom chat %d: %w", i, err)
			}
		}
		return nil
	})
	return chats, err
}

func (r *customChatRepo) Save(ctx context.Context, chats []domain.CustomChat) error {
	if chats == nil {
		chats = []domain.CustomChat{}
	}
	return save(ctx, r.kv, keyCustomChats, chats)
}

func (r *customChatRepo) Clear(ctx context.Context) error {
	return r.kv.store.Delete(ctx, keyCustomChats)
}
