package data

import (
	"context"
	"fmt"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

type botInfoRepo struct {
	kv *kv
}

// newBotInfoRepo creates the bot profile cache repository
func newBotInfoRepo(s *kv) repo.BotInfoRepo {
	return &botInfoRepo{kv: s}
}

func botInfoKey(appID, receiverID string) string {
	return keyBotInfoPrefix + appID + ":" + receiverID
}

func (r *botInfoRepo) Get(ctx context.Context, appID, receiverID string) (*domain.CachedBotInfo, error) {
	info, ok, err := load(ctx, r.kv, botInfoKey(appID, receiverID), func(c domain.CachedBotInfo) error {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.AppID != appID || c.ReceiverID != receiverID {
			return fmt.Errorf("entry owned by %s:%s", c.AppID, c.ReceiverID)
		}
		return nil
	})
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

func (r *botInfoRepo) Put(ctx context.Context, info *domain.CachedBotInfo) error {
	return save(ctx, r.kv, botInfoKey(info.AppID, info.ReceiverID), info)
}

func (r *botInfoRepo) Delete(ctx context.Context, appID, receiverID string) error {
	return r.kv.store.Delete(ctx, botInfoKey(appID, receiverID))
}

// DeleteOthers removes entries owned by any other (app id, receiver id) pair
func (r *botInfoRepo) DeleteOthers(ctx context.Context, appID, receiverID string) (int, error) {
	keys, err := r.kv.store.Keys(ctx, keyBotInfoPrefix)
	if err != nil {
		return 0, err
	}
	keep := botInfoKey(appID, receiverID)
	n := 0
	for _, k := range keys {
		if k == keep {
			continue
		}
		if err := r.kv.store.Delete(ctx, k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
