package domain

import "fmt"

// MemoRequest is one submit of the memo form
type MemoRequest struct {
	Text            string         `json:"text"`
	Files           []AttachedFile `json:"files,omitempty"`
	Destination     string         `json:"destination,omitempty"` // chat id, custom chat id, or empty for the default recipient
	DestinationName string         `json:"destination_name,omitempty"`
}

// FileResult is the outcome for one attachment
type FileResult struct {
	Name      string `json:"name"`
	Key       string `json:"key,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Failed reports whether the attachment did not arrive
func (r FileResult) Failed() bool {
	return r.Skipped || r.Error != ""
}

// SendResult is the outcome of a memo send
type SendResult struct {
	Destination     string          `json:"destination"`
	DestinationName string          `json:"destination_name"`
	Webhook         bool            `json:"webhook"`
	BotChat         bool            `json:"bot_chat"`
	Text            *DeliveryResult `json:"text,omitempty"`
	Files           []FileResult    `json:"files,omitempty"`
}

// FailedFiles counts attachments that did not arrive
func (r *SendResult) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

// HistoryContent is what a send records in history
func (m MemoRequest) HistoryContent() string {
	if m.Text != "" {
		return m.Text
	}
	if len(m.Files) == 1 {
		return "📎 1 file"
	}
	return fmt.Sprintf("📎 %d files", len(m.Files))
}

// ChatListResult is a chat listing with the warnings of sweeps that stopped early
type ChatListResult struct {
	Chats    []ChatSummary       `json:"chats"`
	Warnings []*PartialListError `json:"-"`
}
