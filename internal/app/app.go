package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/flashlark/larkmemo/internal/biz"
	"github.com/flashlark/larkmemo/internal/biz/usecase"
	"github.com/flashlark/larkmemo/internal/conf"
	"github.com/flashlark/larkmemo/internal/data"
	"github.com/flashlark/larkmemo/internal/infra/feishu"
	xlog "github.com/flashlark/larkmemo/internal/log"
	"github.com/flashlark/larkmemo/internal/service"
)

// App holds the wired application
type App struct {
	Config  *conf.Config
	Logger  *slog.Logger
	Service *service.MemoService

	repos *data.Repositories
}

// Options override parts of the wiring, mainly for tests
type Options struct {
	LogOutput  io.Writer
	HTTPClient *http.Client
}

// New wires the application from cfg
func New(cfg *conf.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	logOpts := xlog.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Secrets: []string{cfg.Lark.AppSecret}}
	logger := xlog.NewLogger(out, logOpts)

	store, err := data.OpenStore(cfg.Store.Backend, cfg.Store.Dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	repos := data.NewRepositories(store, logger)

	// A locally stored secret must be masked as well
	if o, err := repos.Settings.LoadOverride(context.Background()); err == nil && o.AppSecret != nil && *o.AppSecret != "" {
		logOpts.Secrets = append(logOpts.Secrets, *o.AppSecret)
		logger = xlog.NewLogger(out, logOpts)
		repos = data.NewRepositories(store, logger)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	client := feishu.NewClient(feishu.Options{HTTPClient: httpClient, Logger: logger})
	tokens := feishu.NewTokenCache(client, nil, logger)

	settingsUC := usecase.NewSettingsUsecase(repos.Settings, cfg.Settings())
	historyUC := usecase.NewHistoryUsecase(repos.History, 0)
	customChatUC := usecase.NewCustomChatUsecase(repos.CustomChat)

	uc := &biz.Usecases{
		Settings:   settingsUC,
		History:    historyUC,
		CustomChat: customChatUC,
		Template:   usecase.NewTemplateUsecase(repos.Template),
		ChatList:   usecase.NewChatListUsecase(client, repos.BotInfo, tokens, cfg.ToChatListConfig(), logger),
		Memo: usecase.NewMemoUsecase(usecase.MemoDeps{
			Tokens:      tokens,
			Messages:    client,
			Uploads:     client,
			Webhooks:    client,
			Settings:    settingsUC,
			History:     historyUC,
			CustomChats: customChatUC,
		}, cfg.ToRetryOptions(), cfg.ToReplyPollConfig(), logger),
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Service: service.NewMemoService(uc, logger),
		repos:   repos,
	}, nil
}

// Close waits for background work and closes the store
func (a *App) Close() error {
	a.Service.Close()
	return a.repos.Close()
}
