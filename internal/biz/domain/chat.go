package domain

import (
	"sort"
	"strings"
)

// ChatKind is the kind of a listed chat
type ChatKind string

const (
	ChatKindP2P   ChatKind = "p2p"
	ChatKindGroup ChatKind = "group"
	ChatKindBot   ChatKind = "bot"
)

// DefaultChatName is the display name of the configured primary recipient
const DefaultChatName = "Bot"

// ChatSummary is one selectable destination
type ChatSummary struct {
	ChatID      string   `json:"chat_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Kind        ChatKind `json:"chat_type"`
	AvatarURL   string   `json:"avatar,omitempty"`
	IsDefault   bool     `json:"is_default"`
}

// ResolveChatKind picks a chat kind from the API-reported mode/type,
// falling back to the identifier's shape.
func ResolveChatKind(apiKind, chatID string) ChatKind {
	switch strings.ToLower(strings.TrimSpace(apiKind)) {
	case "p2p":
		return ChatKindP2P
	case "group", "topic":
		return ChatKindGroup
	}

	id := strings.TrimSpace(chatID)
	switch {
	case strings.HasPrefix(id, chatIDPrefix):
		return ChatKindGroup
	case strings.HasPrefix(id, openIDPrefix), strings.Contains(id, "@"):
		return ChatKindP2P
	}
	return ChatKindGroup
}

// DefaultChat builds the entry for the configured receiver.
// A nil bot yields the bare fallback entry named after the receiver id.
func DefaultChat(receiverID string, bot *BotInfo) ChatSummary {
	if bot == nil {
		return ChatSummary{
			ChatID:    receiverID,
			Name:      receiverID,
			Kind:      ChatKindBot,
			IsDefault: true,
		}
	}
	return ChatSummary{
		ChatID:      receiverID,
		Name:        DefaultChatName,
		Description: bot.Name,
		Kind:        ChatKindBot,
		AvatarURL:   bot.AvatarURL,
		IsDefault:   true,
	}
}

// SortChats orders chats for display: bots first (default bot leading),
// then by recency of use, then alphabetically. The input is not modified.
func SortChats(chats []ChatSummary, recentOrder []string) []ChatSummary {
	rank := make(map[string]int, len(recentOrder))
	for i, id := range recentOrder {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}

	sorted := make([]ChatSummary, len(chats))
	copy(sorted, chats)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		aBot, bBot := a.Kind == ChatKindBot, b.Kind == ChatKindBot
		if aBot != bBot {
			return aBot
		}
		if aBot && a.IsDefault != b.IsDefault {
			return a.IsDefault
		}

		ai, aRecent := rank[a.ChatID]
		bi, bRecent := rank[b.ChatID]
		switch {
		case aRecent && bRecent:
			return ai < bi
		case aRecent != bRecent:
			return aRecent
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return sorted
}
