package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRenderTemplate(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 7, 0, 0, time.UTC)

	got := RenderTemplate("{{date}} | {{time}} | {{datetime}} | {{date}}", now)
	want := "2026/3/5 | 09:07 | 2026/3/5 09:07 | 2026/3/5"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDecorateWithTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 7, 8, 0, time.UTC)

	if got := DecorateWithTimestamp("hello", false, now); got != "hello" {
		t.Errorf("Expected untouched text, got %q", got)
	}
	if got := DecorateWithTimestamp("hello", true, now); got != "[2026-03-05 09:07:08] hello" {
		t.Errorf("Unexpected decorated text: %q", got)
	}
}

func TestPresetTemplates(t *testing.T) {
	presets := PresetTemplates()
	seen := make(map[string]bool)
	for _, p := range presets {
		if !p.IsPreset {
			t.Errorf("Preset %s not flagged as preset", p.ID)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Preset %s invalid: %v", p.ID, err)
		}
		if seen[p.ID] {
			t.Errorf("Duplicate preset id %s", p.ID)
		}
		seen[p.ID] = true
	}
	for _, id := range []string{"meeting-memo", "daily-report", "quick-note", "preset-bug-report"} {
		if !IsPresetTemplateID(id) {
			t.Errorf("Expected %s to be a preset", id)
		}
	}

	// Callers get a copy
	presets[0].Name = "changed"
	if PresetTemplates()[0].Name == "changed" {
		t.Error("Expected PresetTemplates to return a copy")
	}
}

func TestTemplate_Validate(t *testing.T) {
	err := (&Template{ID: "user-1", Name: "  ", Content: "x"}).Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Problems[0] != "name is required" {
		t.Errorf("Unexpected problem: %v", vErr.Problems)
	}
}
