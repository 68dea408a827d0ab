package log

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// MaskValue replaces redacted values.
const MaskValue = "***REDACTED***"

// defaultSensitiveKeys are attribute keys that are always masked.
var defaultSensitiveKeys = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
	"password",
	"token",
	"session",
}

// sensitiveQueryParams are URL query parameters whose values are masked
// when a logged string parses as a URL.
var sensitiveQueryParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"password":     true,
	"sid":          true,
	"session":      true,
}

// RedactingHandler wraps an slog.Handler and masks sensitive attribute values
// before the record reaches the underlying handler.
//
// Design decision: We wrap the handler instead of providing a custom logger
// so every slog API keeps working and the output format (text or JSON) stays
// a choice of the underlying handler.
type RedactingHandler struct {
	handler slog.Handler
	keys    map[string]bool
}

// NewRedactingHandler wraps handler. extraKeys are additional attribute keys
// to mask, compared case-insensitively. A nil handler wraps slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler, extraKeys ...string) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	keys := make(map[string]bool, len(defaultSensitiveKeys)+len(extraKeys))
	for _, k := range defaultSensitiveKeys {
		keys[k] = true
	}
	for _, k := range extraKeys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys[k] = true
		}
	}
	return &RedactingHandler{handler: handler, keys: keys}
}

// Enabled delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a handler with the given attributes, already masked.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.redact(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(masked), keys: h.keys}
}

// WithGroup returns a handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name), keys: h.keys}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = h.redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if h.keys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if s, changed := redactURL(a.Value.String()); changed {
			return slog.String(a.Key, s)
		}
	}
	return a
}

// redactURL masks credential-looking query parameters and userinfo in an
// absolute URL. Strings that are not absolute URLs are returned unchanged.
func redactURL(s string) (string, bool) {
	if !strings.Contains(s, "://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s, false
	}

	changed := false
	if u.User != nil {
		u.User = url.User(MaskValue)
		changed = true
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if sensitiveQueryParams[strings.ToLower(k)] {
				q.Set(k, MaskValue)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	if !changed {
		return s, false
	}
	return u.String(), true
}
