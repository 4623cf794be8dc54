package domain

import (
	"errors"
	"time"
)

// BotInfoTTL is how long a fetched bot profile stays usable
const BotInfoTTL = 24 * time.Hour

// BotInfo is the bot profile returned by /bot/v3/info
type BotInfo struct {
	OpenID    string `json:"open_id"`
	Name      string `json:"app_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// CachedBotInfo is a bot profile remembered for one (app id, receiver id) pair
type CachedBotInfo struct {
	Bot        BotInfo   `json:"bot"`
	AppID      string    `json:"app_id"`
	ReceiverID string    `json:"receiver_id"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// IsFresh checks the entry belongs to the given pair and is younger than ttl
func (c *CachedBotInfo) IsFresh(appID, receiverID string, now time.Time, ttl time.Duration) bool {
	if c.AppID != appID || c.ReceiverID != receiverID {
		return false
	}
	return now.Sub(c.FetchedAt) < ttl
}

// Validate checks the shape of a deserialized entry
func (c *CachedBotInfo) Validate() error {
	if c.AppID == "" || c.ReceiverID == "" {
		return errors.New("bot info cache entry without owner")
	}
	if c.FetchedAt.IsZero() {
		return errors.New("bot info cache entry without fetch time")
	}
	return nil
}
