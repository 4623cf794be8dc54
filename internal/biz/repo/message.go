package repo

import (
	"context"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// TokenRepo issues tenant access tokens
type TokenRepo interface {
	// Token returns a usable token, fetching a new one when none is cached
	Token(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error)

	// Invalidate drops any cached token for the credentials
	Invalidate(creds domain.Credentials)
}

// MessageRepo is the message repository interface
// Responsible for sending and reading messages through the Lark API
type MessageRepo interface {
	// SendText sends a text message; uuid is the idempotency key of the logical send
	SendText(ctx context.Context, tok domain.AccessToken, text string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error)

	// SendFile sends an uploaded image or file
	SendFile(ctx context.Context, tok domain.AccessToken, fileKey, fileName, mimeType string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error)

	// ListRecent lists the newest messages of a chat, newest first
	ListRecent(ctx context.Context, tok domain.AccessToken, chatID string, limit int) ([]domain.Message, error)
}

// UploadRepo uploads attachment content
type UploadRepo interface {
	// Upload decodes base64Data and returns the image_key or file_key
	Upload(ctx context.Context, tok domain.AccessToken, base64Data, fileName, mimeType string) (string, error)
}

// WebhookRepo posts text to incoming webhooks
type WebhookRepo interface {
	SendWebhook(ctx context.Context, url, text string) error
}
