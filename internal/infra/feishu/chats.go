package feishu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

const (
	chatsPath   = "/open-apis/im/v1/chats"
	botInfoPath = "/open-apis/bot/v3/info"
)

// ListChatsPage fetches one page of the chats the bot belongs to
func (c *Client) ListChatsPage(ctx context.Context, tok domain.AccessToken, chatType, pageToken string, pageSize int) (*repo.ChatPage, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(pageSize))
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	if chatType != "" {
		q.Set("chat_type", chatType)
	}

	status, raw, err := c.doJSON(ctx, http.MethodGet, BaseURL(tok.Domain)+chatsPath+"?"+q.Encode(), tok.Value, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		apiEnvelope
		Data struct {
			Items []struct {
				ChatID      string `json:"chat_id"`
				Name        string `json:"name"`
				Description string `json:"description"`
				Avatar      string `json:"avatar"`
				ChatMode    string `json:"chat_mode"`
				ChatType    string `json:"chat_type"`
			} `json:"items"`
			PageToken string `json:"page_token"`
			HasMore   bool   `json:"has_more"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &domain.APIError{Op: "list chats", StatusCode: status, Msg: "invalid response: " + truncateBody(raw)}
	}
	if !isSuccessStatus(status) || result.Code != 0 {
		return nil, &domain.APIError{Op: "list chats", StatusCode: status, Code: result.Code, Msg: result.Msg}
	}

	page := &repo.ChatPage{PageToken: result.Data.PageToken, HasMore: result.Data.HasMore}
	for _, it := range result.Data.Items {
		page.Items = append(page.Items, repo.ChatItem{
			ChatID:      it.ChatID,
			Name:        it.Name,
			Description: it.Description,
			AvatarURL:   it.Avatar,
			ChatMode:    it.ChatMode,
			ChatType:    it.ChatType,
		})
	}
	return page, nil
}

// BotInfo fetches the app's bot profile
func (c *Client) BotInfo(ctx context.Context, tok domain.AccessToken) (*domain.BotInfo, error) {
	status, raw, err := c.doJSON(ctx, http.MethodGet, BaseURL(tok.Domain)+botInfoPath, tok.Value, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		apiEnvelope
		Bot struct {
			OpenID    string `json:"open_id"`
			AppName   string `json:"app_name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"bot"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &domain.APIError{Op: "bot info", StatusCode: status, Msg: "invalid response: " + truncateBody(raw)}
	}
	if !isSuccessStatus(status) || result.Code != 0 {
		return nil, &domain.APIError{Op: "bot info", StatusCode: status, Code: result.Code, Msg: result.Msg}
	}

	return &domain.BotInfo{
		OpenID:    result.Bot.OpenID,
		Name:      result.Bot.AppName,
		AvatarURL: result.Bot.AvatarURL,
	}, nil
}
