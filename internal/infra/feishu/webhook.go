package feishu

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// SendWebhook posts a text message to an incoming webhook; no token is involved
func (c *Client) SendWebhook(ctx context.Context, url, text string) error {
	body := map[string]any{
		"msg_type": "text",
		"content":  map[string]string{"text": text},
	}
	status, raw, err := c.doJSON(ctx, http.MethodPost, url, "", body)
	if err != nil {
		return &domain.DeliveryError{StatusCode: status, Err: err}
	}

	// Newer webhooks answer {code,msg}, older ones {StatusCode,StatusMessage}
	var result struct {
		Code          int    `json:"code"`
		Msg           string `json:"msg"`
		StatusCode    int    `json:"StatusCode"`
		StatusMessage string `json:"StatusMessage"`
	}
	parsed := json.Unmarshal(raw, &result) == nil

	if !isSuccessStatus(status) {
		derr := &domain.DeliveryError{StatusCode: status, Msg: truncateBody(raw)}
		if parsed {
			derr.Code, derr.Msg = result.Code, result.Msg
		}
		return derr
	}
	if parsed && result.Code != 0 {
		return &domain.DeliveryError{StatusCode: status, Code: result.Code, Msg: result.Msg}
	}
	if parsed && result.StatusCode != 0 {
		return &domain.DeliveryError{StatusCode: status, Code: result.StatusCode, Msg: result.StatusMessage}
	}
	c.logger.Info("webhook message sent")
	return nil
}
