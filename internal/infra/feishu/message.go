package feishu

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// resolveRecipient re-derives the identifier kind from its shape.
// A recognizable shape overrides the caller's kind.
func resolveRecipient(to domain.Recipient) (domain.Recipient, error) {
	return domain.NewRecipient(to.ID, to.Kind)
}

// SendText sends a text message
func (c *Client) SendText(ctx context.Context, tok domain.AccessToken, text string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error) {
	content, _ := json.Marshal(map[string]string{"text": text})
	return c.create(ctx, tok, to, larkim.MsgTypeText, string(content), uuid)
}

// SendFile sends an uploaded image (by image_key) or file (by file_key)
func (c *Client) SendFile(ctx context.Context, tok domain.AccessToken, fileKey, fileName, mimeType string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error) {
	msgType := larkim.MsgTypeFile
	field := "file_key"
	if domain.IsImageMime(mimeType) {
		msgType = larkim.MsgTypeImage
		field = "image_key"
	}
	content, _ := json.Marshal(map[string]string{field: fileKey})

	c.logger.Debug("sending attachment",
		slog.String("file_name", fileName),
		slog.String("msg_type", msgType))
	return c.create(ctx, tok, to, msgType, string(content), uuid)
}

func (c *Client) create(ctx context.Context, tok domain.AccessToken, to domain.Recipient, msgType, content, uuid string) (*domain.DeliveryResult, error) {
	to, err := resolveRecipient(to)
	if err != nil {
		return nil, err
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(to.ID).
		MsgType(msgType).
		Content(content)
	if uuid != "" {
		body = body.Uuid(uuid)
	}
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(string(to.Kind)).
		Body(body.Build()).
		Build()

	resp, err := c.sdk(tok).Im.Message.Create(ctx, req, larkcore.WithTenantAccessToken(tok.Value))
	if err != nil {
		return nil, &domain.DeliveryError{Err: err}
	}
	if !resp.Success() || !isSuccessStatus(resp.StatusCode) {
		return nil, &domain.DeliveryError{StatusCode: resp.StatusCode, Code: resp.Code, Msg: resp.Msg}
	}

	result := &domain.DeliveryResult{}
	if resp.Data != nil {
		result.MessageID = deref(resp.Data.MessageId)
		result.ChatID = deref(resp.Data.ChatId)
		result.CreateTime = parseMillis(deref(resp.Data.CreateTime))
	}
	c.logger.Info("message sent",
		slog.String("receive_id_type", string(to.Kind)),
		slog.String("msg_type", msgType),
		slog.String("message_id", result.MessageID))
	return result, nil
}

// ListRecent lists the newest messages of a chat, newest first.
// limit is clamped to 1..50.
func (c *Client) ListRecent(ctx context.Context, tok domain.AccessToken, chatID string, limit int) ([]domain.Message, error) {
	if limit > 50 {
		limit = 50
	}
	if limit <= 0 {
		limit = 20
	}

	req := larkim.NewListMessageReqBuilder().
		ContainerIdType("chat").
		ContainerId(chatID).
		SortType("ByCreateTimeDesc").
		PageSize(limit).
		Build()

	resp, err := c.sdk(tok).Im.Message.List(ctx, req, larkcore.WithTenantAccessToken(tok.Value))
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, &domain.APIError{Op: "list messages", StatusCode: resp.StatusCode, Code: resp.Code, Msg: resp.Msg}
	}
	if resp.Data == nil {
		return nil, nil
	}

	messages := make([]domain.Message, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		if item == nil {
			continue
		}
		msg := domain.Message{
			ID:         deref(item.MessageId),
			ChatID:     deref(item.ChatId),
			MsgType:    deref(item.MsgType),
			CreateTime: parseMillis(deref(item.CreateTime)),
		}
		if item.Body != nil {
			msg.Content = deref(item.Body.Content)
		}
		if item.Sender != nil {
			msg.SenderID = deref(item.Sender.Id)
			msg.SenderType = deref(item.Sender.SenderType)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// parseMillis parses a Lark millisecond timestamp string
func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
