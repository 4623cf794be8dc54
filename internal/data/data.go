package data

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// Backend names accepted by OpenStore
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Repositories contains all persisted repositories
type Repositories struct {
	History    repo.HistoryRepo
	CustomChat repo.CustomChatRepo
	Template   repo.TemplateRepo
	BotInfo    repo.BotInfoRepo
	Settings   repo.SettingsRepo

	store Store
}

// OpenStore opens the store for backend inside dir
func OpenStore(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "larkmemo.db"))
	case BackendBolt:
		return NewBoltStore(filepath.Join(dir, "larkmemo.bolt"))
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

// NewRepositories creates all repositories on top of one store
func NewRepositories(store Store, logger *slog.Logger) *Repositories {
	s := newKV(store, logger)
	return &Repositories{
		History:    newHistoryRepo(s),
		CustomChat: newCustomChatRepo(s),
		Template:   newTemplateRepo(s),
		BotInfo:    newBotInfoRepo(s),
		Settings:   newSettingsRepo(s),
		store:      store,
	}
}

// Close closes the underlying store
func (r *Repositories) Close() error {
	return r.store.Close()
}
