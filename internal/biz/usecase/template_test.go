package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

func TestTemplateUsecase_ListPresetsFirst(t *testing.T) {
	r := &mockTemplateRepo{templates: []domain.Template{{ID: "user-1", Name: "Mine", Content: "x"}}}
	uc := NewTemplateUsecase(r)

	all, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	presets := domain.PresetTemplates()
	if len(all) != len(presets)+1 {
		t.Fatalf("Expected %d templates, got %d", len(presets)+1, len(all))
	}
	if !all[0].IsPreset || all[len(all)-1].ID != "user-1" {
		t.Error("Expected presets before user templates")
	}
}

func TestTemplateUsecase_CreateUpdateDelete(t *testing.T) {
	r := &mockTemplateRepo{}
	uc := NewTemplateUsecase(r)
	ctx := context.Background()

	created, err := uc.Create(ctx, domain.Template{Name: "Standup", Content: "{{date}} standup"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(created.ID, "user-") || created.IsPreset {
		t.Errorf("Unexpected created template %+v", created)
	}

	content := "{{datetime}} standup"
	if _, err := uc.Update(ctx, created.ID, domain.TemplatePatch{Content: &content}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := uc.Select(ctx, created.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sel, err := uc.Selected(ctx)
	if err != nil || sel == nil || sel.Content != content {
		t.Fatalf("Expected selected template, got %+v %v", sel, err)
	}

	ok, err := uc.Delete(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("Expected deletion, got %v %v", ok, err)
	}
	if r.selected != "" {
		t.Errorf("Expected selection cleared, got %q", r.selected)
	}
}

func TestTemplateUsecase_PresetsAreImmutable(t *testing.T) {
	uc := NewTemplateUsecase(&mockTemplateRepo{})
	id := domain.PresetTemplates()[0].ID
	name := "x"

	var vErr *domain.ValidationError
	if _, err := uc.Update(context.Background(), id, domain.TemplatePatch{Name: &name}); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError on update, got %v", err)
	}
	if _, err := uc.Delete(context.Background(), id); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError on delete, got %v", err)
	}
}

func TestTemplateUsecase_SelectUnknown(t *testing.T) {
	uc := NewTemplateUsecase(&mockTemplateRepo{})

	if err := uc.Select(context.Background(), "user-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTemplateUsecase_Render(t *testing.T) {
	r := &mockTemplateRepo{templates: []domain.Template{{ID: "user-1", Name: "Mine", Content: "{{date}} {{time}}"}}}
	uc := NewTemplateUsecase(r)

	out, err := uc.Render(context.Background(), "user-1", time.Date(2026, 3, 5, 9, 7, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "2026/3/5 09:07" {
		t.Errorf("Expected '2026/3/5 09:07', got %q", out)
	}
}
