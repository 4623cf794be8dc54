package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

type templateRepo struct {
	kv *kv
}

// newTemplateRepo creates the user template repository
func newTemplateRepo(s *kv) repo.TemplateRepo {
	return &templateRepo{kv: s}
}

func (r *templateRepo) Load(ctx context.Context) ([]domain.Template, error) {
	templates, _, err := load(ctx, r.kv, keyTemplates, func(templates []domain.Template) error {
		for i := range templates {
			if err := templates[i].Validate(); err != nil {
				return fmt.Errorf("template %d: %w", i, err)
			}
		}
		return nil
	})
	return templates, err
}

func (r *templateRepo) Save(ctx context.Context, templates []domain.Template) error {
	if templates == nil {
		templates = []domain.Template{}
	}
	return save(ctx, r.kv, keyTemplates, templates)
}

func (r *templateRepo) SelectedID(ctx context.Context) (string, error) {
	id, _, err := load(ctx, r.kv, keySelectedTemplate, nonEmpty)
	return id, err
}

func (r *templateRepo) SetSelectedID(ctx context.Context, id string) error {
	if id == "" {
		return r.kv.store.Delete(ctx, keySelectedTemplate)
	}
	return save(ctx, r.kv, keySelectedTemplate, id)
}

func nonEmpty(s string) error {
	if s == "" {
		return errors.New("empty value")
	}
	return nil
}
