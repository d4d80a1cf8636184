// Package logging builds the process logger. Components log through log/slog; the handler behind it
// is charmbracelet/log, colored text on a terminal or json for log shippers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	errorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	infoColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
)

func styles() *log.Styles {
	s := log.DefaultStyles()

	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(errorColor)
	s.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(warnColor)
	s.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Bold(true).Foreground(infoColor)

	s.Keys["error"] = lipgloss.NewStyle().Foreground(errorColor)
	s.Values["error"] = lipgloss.NewStyle().Bold(true)

	return s
}

// New returns a logger writing to w at level ("debug", "info", "warn", "error") in format
// ("text" or "json").
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var formatter log.Formatter

	switch strings.ToLower(format) {
	case "json":
		formatter = log.JSONFormatter
	case "text", "":
		formatter = log.TextFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Formatter:       formatter,
	})

	if formatter == log.TextFormatter {
		logger.SetStyles(styles())
	}

	return slog.New(logger), nil
}
