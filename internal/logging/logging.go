// Package logging собирает slog.Logger: stderr плюс системный журнал.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"log/syslog"
	"os"
)

// Options — параметры логгера.
type Options struct {
	Level  slog.Level
	Syslog bool
	Tag    string

	// Stderr по умолчанию os.Stderr. Тестам удобно подменить.
	Stderr io.Writer
}

// New возвращает логгер и функцию закрытия журнала.
// Если syslog недоступен, логгер пишет только в stderr и сообщает об этом.
func New(opts Options) (*slog.Logger, func() error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	console := slog.NewTextHandler(stderr, handlerOpts)

	if !opts.Syslog {
		return slog.New(console), func() error { return nil }
	}

	w, err := syslog.New(syslog.LOG_USER|syslog.LOG_INFO, opts.Tag)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("syslog unavailable, logging to stderr only", "error", err)
		return logger, func() error { return nil }
	}

	logger := slog.New(fanout{console, newSyslogHandler(w, handlerOpts)})
	return logger, w.Close
}

// fanout отдаёт каждую запись всем обработчикам.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
