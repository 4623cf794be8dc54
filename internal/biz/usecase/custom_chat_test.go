package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

func TestCustomChatUsecase_CRUD(t *testing.T) {
	r := &mockCustomChatRepo{}
	uc := NewCustomChatUsecase(r)
	ctx := context.Background()

	created, err := uc.Create(ctx, domain.CustomChat{Name: "  Team ", Type: domain.CustomChatGroup, ChatID: "oc_team"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(created.ID, "custom_") {
		t.Errorf("Expected custom_ id, got %s", created.ID)
	}
	if created.Name != "Team" {
		t.Errorf("Expected trimmed name, got %q", created.Name)
	}

	name := "Renamed"
	updated, err := uc.Update(ctx, created.ID, domain.CustomChatPatch{Name: &name})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Name != "Renamed" || updated.ChatID != "oc_team" {
		t.Errorf("Unexpected update result %+v", updated)
	}

	got, err := uc.Get(ctx, created.ID)
	if err != nil || got.Name != "Renamed" {
		t.Fatalf("Expected stored update, got %+v %v", got, err)
	}

	ok, err := uc.Delete(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("Expected deletion, got %v %v", ok, err)
	}
	if _, err := uc.Get(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCustomChatUsecase_InvalidUpdateLeavesStoreUntouched(t *testing.T) {
	r := &mockCustomChatRepo{chats: []domain.CustomChat{
		{ID: "custom_1", Name: "Hook", Type: domain.CustomChatWebhook, WebhookURL: "https://hooks.example.com/x"},
	}}
	uc := NewCustomChatUsecase(r)

	bad := "not a url"
	_, err := uc.Update(context.Background(), "custom_1", domain.CustomChatPatch{WebhookURL: &bad})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if r.chats[0].WebhookURL != "https://hooks.example.com/x" {
		t.Errorf("Expected stored chat unchanged, got %s", r.chats[0].WebhookURL)
	}
}

func TestCustomChatUsecase_CreateRejectsInvalid(t *testing.T) {
	uc := NewCustomChatUsecase(&mockCustomChatRepo{})

	_, err := uc.Create(context.Background(), domain.CustomChat{Name: "x", Type: domain.CustomChatWebhook})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}
