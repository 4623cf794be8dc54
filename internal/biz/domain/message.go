package domain

import (
	"encoding/json"
	"time"
)

// SenderTypeApp is the sender_type of messages posted by an app (bot)
const SenderTypeApp = "app"

// Message is a message read back from a chat
type Message struct {
	ID         string
	ChatID     string
	MsgType    string // text, image, file, post, ...
	Content    string // raw JSON body content
	SenderID   string
	SenderType string // user, app
	CreateTime time.Time
}

// IsFromApp checks if the message was posted by an app
func (m *Message) IsFromApp() bool {
	return m.SenderType == SenderTypeApp
}

// IsAfter checks if the message is after the specified time
func (m *Message) IsAfter(t time.Time) bool {
	return m.CreateTime.After(t)
}

// Text extracts the text of a text message, or returns the raw content
func (m *Message) Text() string {
	if m.MsgType == "text" {
		var parsed struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(m.Content), &parsed); err == nil {
			return parsed.Text
		}
	}
	return m.Content
}

// DeliveryResult describes a message accepted by the messages endpoint
type DeliveryResult struct {
	MessageID  string    `json:"message_id"`
	ChatID     string    `json:"chat_id"`
	CreateTime time.Time `json:"create_time"`
}

// BotReply is a bot message observed after a send
type BotReply struct {
	MessageID string    `json:"message_id"`
	Text      string    `json:"text"`
	Preview   string    `json:"preview"`
	At        time.Time `json:"at"`
}

// PreviewText truncates text to n runes, appending "..."
func PreviewText(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
