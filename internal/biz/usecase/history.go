package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// HistoryUsecase manages the capped message history log
type HistoryUsecase struct {
	repo repo.HistoryRepo
	max  int
	now  func() time.Time

	mu sync.Mutex
}

// NewHistoryUsecase creates a new history usecase; max <= 0 uses MaxHistoryItems
func NewHistoryUsecase(historyRepo repo.HistoryRepo, max int) *HistoryUsecase {
	if max <= 0 {
		max = domain.MaxHistoryItems
	}
	return &HistoryUsecase{repo: historyRepo, max: max, now: time.Now}
}

// Record prepends an entry, evicting the oldest beyond the cap
func (uc *HistoryUsecase) Record(ctx context.Context, entry domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = uc.now()
	}
	// Stored entries must pass load-time validation
	if err := entry.Validate(); err != nil {
		return &domain.ValidationError{Entity: "history entry", Problems: []string{err.Error()}}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	return uc.repo.Save(ctx, domain.PrependHistory(entries, entry, uc.max))
}

// List returns all entries, newest first
func (uc *HistoryUsecase) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	return uc.repo.Load(ctx)
}

// Search matches content or destination name
func (uc *HistoryUsecase) Search(ctx context.Context, query string) ([]domain.HistoryEntry, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SearchHistory(entries, query), nil
}

// Delete removes one entry; it reports whether the entry existed
func (uc *HistoryUsecase) Delete(ctx context.Context, id string) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	return true, uc.repo.Save(ctx, kept)
}

// Clear removes every entry
func (uc *HistoryUsecase) Clear(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.repo.Clear(ctx)
}

// Stats summarizes the log
func (uc *HistoryUsecase) Stats(ctx context.Context) (domain.HistoryStats, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return domain.HistoryStats{}, err
	}
	return domain.ComputeHistoryStats(entries, uc.now()), nil
}

// RecentChatOrder lists recently used destinations, newest first
func (uc *HistoryUsecase) RecentChatOrder(ctx context.Context) ([]string, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.RecentChatOrder(entries), nil
}
