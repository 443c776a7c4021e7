package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// priorityWriter — часть *syslog.Writer, которой пользуется обработчик.
type priorityWriter interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
}

// syslogHandler форматирует запись текстом и отправляет её
// в журнал с приоритетом, соответствующим уровню slog.
type syslogHandler struct {
	inner slog.Handler
	w     priorityWriter
	state *syslogState
}

// Общее состояние для всех производных WithAttrs/WithGroup.
type syslogState struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newSyslogHandler(w priorityWriter, opts *slog.HandlerOptions) *syslogHandler {
	state := &syslogState{}
	inner := slog.NewTextHandler(&state.buf, &slog.HandlerOptions{
		Level: opts.Level,
		// Время и уровень ставит сам syslog
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	return &syslogHandler{inner: inner, w: w, state: state}
}

func (h *syslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	h.state.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	line := strings.TrimSuffix(h.state.buf.String(), "\n")

	switch {
	case r.Level >= slog.LevelError:
		return h.w.Err(line)
	case r.Level >= slog.LevelWarn:
		return h.w.Warning(line)
	case r.Level >= slog.LevelInfo:
		return h.w.Info(line)
	default:
		return h.w.Debug(line)
	}
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syslogHandler{inner: h.inner.WithAttrs(attrs), w: h.w, state: h.state}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{inner: h.inner.WithGroup(name), w: h.w, state: h.state}
}
