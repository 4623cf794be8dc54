package domain

import (
	"strings"
	"time"
)

// Template is a reusable memo body
type Template struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Content   string    `json:"content" validate:"required"`
	Category  string    `json:"category"`
	IsPreset  bool      `json:"is_preset"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplatePatch carries the fields an update may change
type TemplatePatch struct {
	Name     *string `json:"name,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Validate checks required fields
func (t *Template) Validate() error {
	n := *t
	n.Name = strings.TrimSpace(n.Name)
	n.ID = strings.TrimSpace(n.ID)
	return validationError("template", validate.Struct(&n), nil)
}

// Apply merges a patch into the template
func (t *Template) Apply(p TemplatePatch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
}

// RenderTemplate replaces {{date}}, {{time}} and {{datetime}} in content
func RenderTemplate(content string, now time.Time) string {
	date := now.Format("2006/1/2")
	clock := now.Format("15:04")
	return strings.NewReplacer(
		"{{datetime}}", date+" "+clock,
		"{{date}}", date,
		"{{time}}", clock,
	).Replace(content)
}

// DecorateWithTimestamp prefixes text with "[YYYY-MM-DD HH:MM:SS] " when enabled
func DecorateWithTimestamp(text string, enabled bool, now time.Time) string {
	if !enabled {
		return text
	}
	return "[" + now.Format("2006-01-02 15:04:05") + "] " + text
}

// PresetTemplates returns the built-in templates
func PresetTemplates() []Template {
	out := make([]Template, len(presetTemplates))
	copy(out, presetTemplates)
	return out
}

// IsPresetTemplateID reports whether id names a built-in template
func IsPresetTemplateID(id string) bool {
	for _, t := range presetTemplates {
		if t.ID == id {
			return true
		}
	}
	return false
}

func preset(id, name, category, content string) Template {
	return Template{ID: id, Name: name, Category: category, Content: content, IsPreset: true}
}

var presetTemplates = []Template{
	preset("meeting-memo", "Meeting memo", "Business",
		"📅 Meeting memo\nDate: \nAttendees: \nAgenda: \n\n## 📝 Minutes\n\n\n## ✅ Action items\n- [ ] \n- [ ] \n\n## 📌 Homework for next time\n\n"),
	preset("daily-report", "Daily report", "Report",
		"📊 Daily report - {{date}}\n\n## ✅ Done today\n\n\n## 📋 In progress\n\n\n## 🚧 Issues\n\n\n## 📅 Tomorrow\n\n"),
	preset("task-reminder", "Task reminder", "Tasks",
		"⏰ Task reminder\n\n## 🎯 Priority: high\n- [ ] \n\n## 📋 Priority: medium\n- [ ] \n\n## 📝 Priority: low\n- [ ] \n\nDue: \nOwner: \n"),
	preset("project-update", "Project update", "Project",
		"🚀 Project update\n\nProject: \nPeriod: \n\n## 📈 Progress\nCompletion: %\n\n## ✅ Completed\n\n\n## 🔄 In progress\n\n\n## ⚠️ Risks\n\n\n## 📅 Next milestone\n\n"),
	preset("quick-note", "Quick note", "General", "💡 Note\n\n"),
	preset("preset-task", "Task", "Tasks",
		"## Task\n\n**Due**: \n**Priority**: \n**Owner**: \n\n### Details\n\n\n### Checklist\n- [ ] \n- [ ] \n- [ ] \n\n### Notes\n"),
	preset("preset-daily-report", "Daily report (short)", "Business",
		"## Daily report - {{date}}\n\n### Done today\n\n\n### In progress\n\n\n### Tomorrow\n\n\n### Questions\n\n\n### Other\n"),
	preset("preset-quick-note", "Timestamped note", "General", "📝 {{time}} - "),
	preset("preset-reminder", "Reminder", "General",
		"⏰ Reminder\n\n**Due**: \n**What**: \n\n**Importance**: \n**People**: \n\n**Notes**: "),
	preset("preset-bug-report", "Bug report", "Development",
		"## Bug report\n\n**Found at**: {{datetime}}\n**Environment**: \n**Steps to reproduce**:\n1. \n2. \n3. \n\n**Expected**:\n\n\n**Actual**:\n\n\n**Screenshots**:\n\n\n**Priority**: \n**Owner**: "),
	preset("preset-idea", "Idea", "Creative",
		"## Idea\n\n**Title**: \n**When**: {{datetime}}\n\n### Summary\n\n\n### Details\n\n\n### Benefits\n\n\n### Risks\n\n\n### Next steps\n- [ ] \n- [ ] "),
	preset("preset-feedback", "Feedback", "Business",
		"## Feedback\n\n**Subject**: \n**Date**: {{date}}\n**Reviewer**: \n\n### What went well\n\n\n### What to improve\n\n\n### Suggestions\n\n\n### Overall\n"),
}
