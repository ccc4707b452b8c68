package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Console styles. lipgloss drops the escape sequences on its own when
// stdout is not a terminal or NO_COLOR is set.
var (
	consoleTimeStyle  = lipgloss.NewStyle().Faint(true)
	consoleTagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	consoleDebugStyle = lipgloss.NewStyle().Faint(true)
	consoleWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	consoleErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	consoleAttrStyle  = lipgloss.NewStyle().Faint(true)
)

// ConsoleHandler renders human-oriented log lines:
//
//	04:25:01 pm [reload] Change detected.
//
// The bracketed tag is the logger's module attribute, so supervisor output
// stays distinguishable from child-process output on a shared terminal.
type ConsoleHandler struct {
	out    io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// NewConsoleHandler creates a console handler writing to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{out: out, level: level, mu: &sync.Mutex{}}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	tag := "molt"
	var fields []string

	collect := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		if a.Key == "module" && len(h.groups) == 0 {
			tag = a.Value.String()
			return
		}
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		fields = append(fields, fmt.Sprintf("%s=%v", key, a.Value))
	}

	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	msg := r.Message
	switch {
	case r.Level >= slog.LevelError:
		msg = consoleErrorStyle.Render(msg)
	case r.Level >= slog.LevelWarn:
		msg = consoleWarnStyle.Render(msg)
	case r.Level < slog.LevelInfo:
		msg = consoleDebugStyle.Render(msg)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var sb strings.Builder
	sb.WriteString(consoleTimeStyle.Render(ts.Format("03:04:05 pm")))
	sb.WriteString(" ")
	sb.WriteString(consoleTagStyle.Render("[" + tag + "]"))
	sb.WriteString(" ")
	sb.WriteString(msg)
	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(consoleAttrStyle.Render(f))
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &ConsoleHandler{
		out:    h.out,
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
		mu:     h.mu,
	}
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &ConsoleHandler{
		out:    h.out,
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
		mu:     h.mu,
	}
}
