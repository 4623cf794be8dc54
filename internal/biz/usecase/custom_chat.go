package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// CustomChatUsecase manages user-defined chat shortcuts
type CustomChatUsecase struct {
	repo repo.CustomChatRepo
	now  func() time.Time

	mu sync.Mutex
}

// NewCustomChatUsecase creates a new custom chat usecase
func NewCustomChatUsecase(customChatRepo repo.CustomChatRepo) *CustomChatUsecase {
	return &CustomChatUsecase{repo: customChatRepo, now: time.Now}
}

// List returns all custom chats
func (uc *CustomChatUsecase) List(ctx context.Context) ([]domain.CustomChat, error) {
	return uc.repo.Load(ctx)
}

// Get returns one custom chat or domain.ErrNotFound
func (uc *CustomChatUsecase) Get(ctx context.Context, id string) (*domain.CustomChat, error) {
	chats, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID == id {
			return &chats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create validates and stores a new custom chat
func (uc *CustomChatUsecase) Create(ctx context.Context, chat domain.CustomChat) (*domain.CustomChat, error) {
	chat.Normalize()
	if err := chat.Validate(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	chats, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load custom chats: %w", err)
	}

	now := uc.now()
	chat.ID = fmt.Sprintf("custom_%d_%s", now.UnixMilli(), shortRandom())
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if err := uc.repo.Save(ctx, append(chats, chat)); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Update applies a patch; the result is validated before anything is written
func (uc *CustomChatUsecase) Update(ctx context.Context, id string, patch domain.CustomChatPatch) (*domain.CustomChat, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	chats, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load custom chats: %w", err)
	}
	for i := range chats {
		if chats[i].ID != id {
			continue
		}
		updated := chats[i]
		updated.Apply(patch)
		updated.Normalize()
		if err := updated.Validate(); err != nil {
			return nil, err
		}
		updated.UpdatedAt = uc.now()
		chats[i] = updated
		if err := uc.repo.Save(ctx, chats); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, domain.ErrNotFound
}

// Delete removes a custom chat; it reports whether it existed
func (uc *CustomChatUsecase) Delete(ctx context.Context, id string) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	chats, err := uc.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]domain.CustomChat, 0, len(chats))
	for _, c := range chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(chats) {
		return false, nil
	}
	return true, uc.repo.Save(ctx, kept)
}

// Clear removes all custom chats
func (uc *CustomChatUsecase) Clear(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.repo.Clear(ctx)
}

// shortRandom returns 9 random hex characters
func shortRandom() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
