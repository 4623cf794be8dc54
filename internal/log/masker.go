package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const mask = "***"

var (
	tenantTokenRegex = regexp.MustCompile(`\bt-[A-Za-z0-9_.-]{16,}`)
	bearerRegex      = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]+`)
)

// MaskingHandler wraps a slog.Handler and redacts tenant tokens, bearer
// headers and configured secrets from messages and attributes
type MaskingHandler struct {
	handler slog.Handler
	secrets []string
}

// NewMaskingHandler creates a masking handler; secrets are replaced verbatim
func NewMaskingHandler(handler slog.Handler, secrets ...string) *MaskingHandler {
	var kept []string
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return &MaskingHandler{handler: handler, secrets: kept}
}

// Mask redacts everything the handler would redact
func (h *MaskingHandler) Mask(text string) string {
	for _, s := range h.secrets {
		text = strings.ReplaceAll(text, s, mask)
	}
	text = bearerRegex.ReplaceAllString(text, "Bearer "+mask)
	return tenantTokenRegex.ReplaceAllString(text, "t-"+mask)
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	// Fresh record; slog may reuse the original
	r := slog.NewRecord(record.Time, record.Level, h.Mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, r)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &MaskingHandler{handler: h.handler.WithAttrs(masked), secrets: h.secrets}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{handler: h.handler.WithGroup(name), secrets: h.secrets}
}

func (h *MaskingHandler) maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: h.maskValue(a.Value)}
}

func (h *MaskingHandler) maskValue(v slog.Value) slog.Value {
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(h.Mask(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(h.Mask(err.Error()))
		}
		return v
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = h.maskAttr(a)
		}
		return slog.GroupValue(masked...)
	case slog.KindLogValuer:
		return h.maskValue(v.Resolve())
	default:
		return v
	}
}
