package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// These keys commonly carry student personal data that should not land
// in log output.
var sensitiveKeys = map[string]bool{
	// Identity
	"email":         true,
	"student_email": true,
	"studentemail":  true,
	"student_id":    true,
	"studentid":     true,
	"national_id":   true,
	"id_number":     true,

	// Network
	"client_ip": true,
	"clientip":  true,
	"ip":        true,
	"remote_ip": true,
}

var (
	// emailPattern matches email-shaped values regardless of key name.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// nationalIDPattern matches bare national id numbers (8-9 digits).
	nationalIDPattern = regexp.MustCompile(`^\d{8,9}$`)

	// ipv4Pattern matches dotted-quad IPv4 values.
	ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// MaskValue is the string used to replace redacted values.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler to redact student personal data.
// It intercepts log records and masks attribute values that match
// sensitive key names or value patterns before passing them to the
// underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Every component that accepts *slog.Logger gets redaction for free
type RedactHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler
}

// NewRedactHandler creates a new RedactHandler wrapping the given handler.
// All log attributes are redacted before being passed to the underlying
// handler. If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it to the underlying handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are redacted before being added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(redactedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr redacts a single attribute, recursively handling groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redactedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redactedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	sensitiveKey := sensitiveKeys[keyLower]

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, redactString(a.Value.String(), sensitiveKey))
	}

	if sensitiveKey {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// redactString masks a string value. Values recognized by shape keep a
// non-identifying remainder; under a sensitive key, anything unmatched
// is fully masked.
func redactString(v string, sensitiveKey bool) string {
	switch {
	case emailPattern.MatchString(v):
		return maskEmail(v)
	case ipv4Pattern.MatchString(v):
		return maskIP(v)
	case nationalIDPattern.MatchString(v):
		return MaskValue
	case sensitiveKey:
		return MaskValue
	}
	return v
}

// maskEmail masks the local part of an email, keeping the domain so the
// institution remains identifiable in logs.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return MaskValue
	}
	return "***" + email[at:]
}

// maskIP masks the host part of an IPv4 address, keeping the /16 prefix
// so network-level debugging stays possible.
func maskIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return MaskValue
	}
	return parts[0] + "." + parts[1] + ".x.x"
}

// NewRedactLogger creates a new slog.Logger with redaction enabled.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewRedactLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewRedactHandler(textHandler))
}

// NewRedactJSONLogger creates a new slog.Logger with redaction that
// outputs JSON format. Useful for structured log aggregation.
func NewRedactJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewRedactHandler(jsonHandler))
}
