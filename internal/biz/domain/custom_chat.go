package domain

import (
	"strings"
	"time"
)

// CustomChatType is the delivery route of a custom chat
type CustomChatType string

const (
	CustomChatGroup    CustomChatType = "group"
	CustomChatPersonal CustomChatType = "personal"
	CustomChatWebhook  CustomChatType = "webhook"
)

// CustomChat is a user-managed shortcut to a chat id or webhook
type CustomChat struct {
	ID          string         `json:"id"`
	Name        string         `json:"name" validate:"required"`
	ChatID      string         `json:"chat_id,omitempty" validate:"required_unless=Type webhook"`
	WebhookURL  string         `json:"webhook_url,omitempty" validate:"required_if=Type webhook"`
	Type        CustomChatType `json:"type" validate:"required,oneof=group personal webhook"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CustomChatPatch carries the fields an update may change
type CustomChatPatch struct {
	Name        *string         `json:"name,omitempty"`
	ChatID      *string         `json:"chat_id,omitempty"`
	WebhookURL  *string         `json:"webhook_url,omitempty"`
	Type        *CustomChatType `json:"type,omitempty"`
	Description *string         `json:"description,omitempty"`
}

// Normalize trims user-entered text fields
func (c *CustomChat) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.ChatID = strings.TrimSpace(c.ChatID)
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Description = strings.TrimSpace(c.Description)
}

// Validate checks the fields a user can enter
func (c *CustomChat) Validate() error {
	n := *c
	n.Normalize()
	if err := validationError("custom chat", validate.Struct(&n), nil); err != nil {
		return err
	}
	if n.Type == CustomChatWebhook {
		if err := validate.Var(n.WebhookURL, "http_url"); err != nil {
			return &ValidationError{Entity: "custom chat", Problems: []string{"webhook_url must be a valid URL"}}
		}
	}
	return nil
}

// ValidateStored additionally checks the fields assigned on creation
func (c *CustomChat) ValidateStored() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Entity: "custom chat", Problems: []string{"id is required"}}
	}
	return c.Validate()
}

// Apply merges a patch into the chat
func (c *CustomChat) Apply(p CustomChatPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.ChatID != nil {
		c.ChatID = *p.ChatID
	}
	if p.WebhookURL != nil {
		c.WebhookURL = *p.WebhookURL
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

// Target returns the id a non-webhook custom chat sends to
func (c *CustomChat) Target() string {
	if c.ChatID != "" {
		return c.ChatID
	}
	return c.ID
}
