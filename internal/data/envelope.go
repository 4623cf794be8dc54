package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// schemaVersion is the version of every persisted envelope
const schemaVersion = 1

// Persisted keys
const (
	keyHistory          = "message-history"
	keyCustomChats      = "custom_chats"
	keyTemplates        = "memo-templates"
	keySelectedTemplate = "selected-template-id"
	keySettings         = "settings"
	keySelectedChat     = "selected-chat-id"
	keyBotInfoPrefix    = "bot-info:"
)

type envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// kv wraps a Store with envelope encoding and validate-or-discard loading
type kv struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func newKV(store Store, logger *slog.Logger) *kv {
	if logger == nil {
		logger = slog.Default()
	}
	return &kv{store: store, logger: logger, now: time.Now}
}

// save writes v under key inside a versioned envelope
func save[T any](ctx context.Context, s *kv, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: schemaVersion, SavedAt: s.now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Put(ctx, key, raw)
}

// load reads key into T. A missing key yields the zero value. Corrupt data
// (unparsable, wrong version, or rejected by validate) is logged, deleted,
// and also yields the zero value. Storage errors are returned.
func load[T any](ctx context.Context, s *kv, key string, validate func(T) error) (T, bool, error) {
	var zero T
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var env envelope
	var v T
	switch err := json.Unmarshal(raw, &env); {
	case err != nil:
		return zero, false, s.discard(ctx, key, err)
	case env.Version != schemaVersion:
		return zero, false, s.discard(ctx, key, fmt.Errorf("unsupported version %d", env.Version))
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, false, s.discard(ctx, key, err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return zero, false, s.discard(ctx, key, err)
		}
	}
	return v, true, nil
}

func (s *kv) discard(ctx context.Context, key string, reason error) error {
	s.logger.Warn("discarding corrupt persisted state",
		slog.String("key", key),
		slog.Any("error", reason))
	return s.store.Delete(ctx, key)
}
