package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

// Options configure NewLogger
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text, json
	Secrets []string
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger creates a masked slog.Logger writing to w
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(NewMaskingHandler(h, opts.Secrets...))
}

// LarkLogger adapts slog.Logger to the logger interface the Lark SDK expects
type LarkLogger struct {
	Logger *slog.Logger
}

var _ larkcore.Logger = (*LarkLogger)(nil)

func (a *LarkLogger) Debug(ctx context.Context, args ...interface{}) {
	a.Logger.DebugContext(ctx, join(args))
}

func (a *LarkLogger) Info(ctx context.Context, args ...interface{}) {
	a.Logger.InfoContext(ctx, join(args))
}

func (a *LarkLogger) Warn(ctx context.Context, args ...interface{}) {
	a.Logger.WarnContext(ctx, join(args))
}

func (a *LarkLogger) Error(ctx context.Context, args ...interface{}) {
	a.Logger.ErrorContext(ctx, join(args))
}

func join(args []interface{}) string {
	return "lark sdk: " + strings.TrimSpace(fmt.Sprintln(args...))
}
