package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

func TestSettingsUsecase_SetOverridesBase(t *testing.T) {
	r := &mockSettingsRepo{}
	uc := NewSettingsUsecase(r, baseSettings())
	ctx := context.Background()

	if err := uc.Set(ctx, "receive_id", " oc_team "); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := uc.Set(ctx, "prefix_timestamp", "true"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s, err := uc.Effective(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.ReceiveID != "oc_team" || !s.PrefixTimestamp {
		t.Errorf("Expected override to win, got %+v", s)
	}
	if s.AppID != "cli_a" {
		t.Errorf("Expected base app id, got %s", s.AppID)
	}

	if err := uc.Unset(ctx, "receive_id"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s, _ = uc.Effective(ctx)
	if s.ReceiveID != "me@example.com" {
		t.Errorf("Expected base receive id after unset, got %s", s.ReceiveID)
	}
}

func TestSettingsUsecase_SetRejectsBadValues(t *testing.T) {
	uc := NewSettingsUsecase(&mockSettingsRepo{}, baseSettings())
	ctx := context.Background()

	tests := []struct {
		field string
		value string
	}{
		{"receive_id_type", "user_id"},
		{"prefix_timestamp", "sometimes"},
		{"colour", "blue"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var vErr *domain.ValidationError
			if err := uc.Set(ctx, tt.field, tt.value); !errors.As(err, &vErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestSettingsUsecase_Status(t *testing.T) {
	base := baseSettings()
	base.AppSecret = ""
	uc := NewSettingsUsecase(&mockSettingsRepo{}, base)

	status, err := uc.Status(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Complete || len(status.MissingFields) != 1 || status.MissingFields[0] != "App Secret" {
		t.Errorf("Unexpected status %+v", status)
	}
}
