package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// MaxHistoryItems caps the message history log
const MaxHistoryItems = 100

// UnresolvedDestination is recorded when a send failed before its destination was known
const UnresolvedDestination = "default"

// HistoryEntry records one send attempt
type HistoryEntry struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	Destination     string    `json:"destination"`
	DestinationName string    `json:"destination_name"`
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
}

// HistoryStats summarizes the history log
type HistoryStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	LastWeek   int `json:"last_week"`
}

// Validate checks the shape of a deserialized entry
func (e *HistoryEntry) Validate() error {
	if e.ID == "" {
		return errors.New("history entry without id")
	}
	if e.Destination == "" {
		return errors.New("history entry without destination")
	}
	if e.Timestamp.IsZero() {
		return errors.New("history entry without timestamp")
	}
	return nil
}

// PrependHistory puts entry first and evicts the oldest entries beyond max
func PrependHistory(entries []HistoryEntry, entry HistoryEntry, max int) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries)+1)
	out = append(out, entry)
	out = append(out, entries...)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// SearchHistory matches content or destination name, case-insensitively
func SearchHistory(entries []HistoryEntry, query string) []HistoryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	var out []HistoryEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Content), q) ||
			strings.Contains(strings.ToLower(e.DestinationName), q) {
			out = append(out, e)
		}
	}
	return out
}

// ComputeHistoryStats counts entries as of now
func ComputeHistoryStats(entries []HistoryEntry, now time.Time) HistoryStats {
	weekAgo := now.AddDate(0, 0, -7)
	stats := HistoryStats{Total: len(entries)}
	for _, e := range entries {
		if e.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		if e.Timestamp.After(weekAgo) {
			stats.LastWeek++
		}
	}
	return stats
}

// RecentChatOrder lists destinations of successful sends, newest first, without repeats
func RecentChatOrder(entries []HistoryEntry) []string {
	ok := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Success {
			ok = append(ok, e)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Timestamp.After(ok[j].Timestamp)
	})

	seen := make(map[string]bool, len(ok))
	order := make([]string, 0, len(ok))
	for _, e := range ok {
		if seen[e.Destination] {
			continue
		}
		seen[e.Destination] = true
		order = append(order, e.Destination)
	}
	return order
}
