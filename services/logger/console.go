package logsvc

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// ConsoleHandler is a slog.Handler printing one colored line per record.
type ConsoleHandler struct {
	l     *log.Logger
	level slog.Leveler
	attrs []slog.Attr
}

var _ slog.Handler = (*ConsoleHandler)(nil)

func NewConsoleHandler(out io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{
		l:     log.New(out, "", 0),
		level: level,
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var sb strings.Builder
	write := func(a slog.Attr) bool {
		sb.WriteString(color.GreenString(a.Key))
		sb.WriteByte('=')
		sb.WriteString(fmt.Sprint(a.Value.Any()))
		sb.WriteByte(' ')
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	h.l.Println(r.Time.Format("15:04:05.000"), level, r.Message, strings.TrimSpace(sb.String()))
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return &h2
}

// WithGroup is a no-op: groups are flattened on the console.
func (h *ConsoleHandler) WithGroup(_ string) slog.Handler {
	return h
}
