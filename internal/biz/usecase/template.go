package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// TemplateUsecase manages preset and user templates
type TemplateUsecase struct {
	repo repo.TemplateRepo
	now  func() time.Time

	mu sync.Mutex
}

// NewTemplateUsecase creates a new template usecase
func NewTemplateUsecase(templateRepo repo.TemplateRepo) *TemplateUsecase {
	return &TemplateUsecase{repo: templateRepo, now: time.Now}
}

// List returns the presets followed by the user templates
func (uc *TemplateUsecase) List(ctx context.Context) ([]domain.Template, error) {
	user, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return append(domain.PresetTemplates(), user...), nil
}

// ListUser returns only the user templates
func (uc *TemplateUsecase) ListUser(ctx context.Context) ([]domain.Template, error) {
	return uc.repo.Load(ctx)
}

// Get returns one template or domain.ErrNotFound
func (uc *TemplateUsecase) Get(ctx context.Context, id string) (*domain.Template, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create stores a new user template
func (uc *TemplateUsecase) Create(ctx context.Context, t domain.Template) (*domain.Template, error) {
	now := uc.now()
	t.ID = fmt.Sprintf("user-%d-%s", now.UnixMilli(), shortRandom())
	t.Name = strings.TrimSpace(t.Name)
	t.IsPreset = false
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	templates, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if err := uc.repo.Save(ctx, append(templates, t)); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update changes a user template; presets cannot be modified
func (uc *TemplateUsecase) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.Template, error) {
	if domain.IsPresetTemplateID(id) {
		return nil, presetImmutable()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	templates, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	for i := range templates {
		if templates[i].ID != id {
			continue
		}
		updated := templates[i]
		updated.Apply(patch)
		updated.Name = strings.TrimSpace(updated.Name)
		if err := updated.Validate(); err != nil {
			return nil, err
		}
		updated.UpdatedAt = uc.now()
		templates[i] = updated
		if err := uc.repo.Save(ctx, templates); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, domain.ErrNotFound
}

// Delete removes a user template and clears the selection if it pointed at it
func (uc *TemplateUsecase) Delete(ctx context.Context, id string) (bool, error) {
	if domain.IsPresetTemplateID(id) {
		return false, presetImmutable()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	templates, err := uc.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]domain.Template, 0, len(templates))
	for _, t := range templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(templates) {
		return false, nil
	}
	if err := uc.repo.Save(ctx, kept); err != nil {
		return false, err
	}

	if selected, err := uc.repo.SelectedID(ctx); err == nil && selected == id {
		_ = uc.repo.SetSelectedID(ctx, "")
	}
	return true, nil
}

// Select remembers id as the selected template; "" clears the selection
func (uc *TemplateUsecase) Select(ctx context.Context, id string) error {
	if id != "" {
		if _, err := uc.Get(ctx, id); err != nil {
			return err
		}
	}
	return uc.repo.SetSelectedID(ctx, id)
}

// Selected returns the selected template, or nil when none is selected
func (uc *TemplateUsecase) Selected(ctx context.Context) (*domain.Template, error) {
	id, err := uc.repo.SelectedID(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	t, err := uc.Get(ctx, id)
	if err == domain.ErrNotFound {
		return nil, nil
	}
	return t, err
}

// Render returns the template content with date and time variables filled in
func (uc *TemplateUsecase) Render(ctx context.Context, id string, now time.Time) (string, error) {
	t, err := uc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return domain.RenderTemplate(t.Content, now), nil
}

func presetImmutable() error {
	return &domain.ValidationError{Entity: "template", Problems: []string{"preset templates cannot be modified"}}
}
