package data

import (
	"context"
	"fmt"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

type historyRepo struct {
	kv *kv
}

// newHistoryRepo creates the message history repository
func newHistoryRepo(s *kv) repo.HistoryRepo {
	return &historyRepo{kv: s}
}

func (r *historyRepo) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, _, err := load(ctx, r.kv, keyHistory, func(entries []domain.HistoryEntry) error {
		for i := range entries {
			if err := entries[i].Validate(); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
		return nil
	})
	return entries, err
}

func (r *historyRepo) Save(ctx context.Context, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return save(ctx, r.kv, keyHistory, entries)
}

func (r *historyRepo) Clear(ctx context.Context) error {
	return r.kv.store.Delete(ctx, keyHistory)
}
