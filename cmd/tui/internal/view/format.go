package view

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/statement"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	panelStyle   = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

// FormatAmount formats an amount stored as cents as Brazilian currency.
func FormatAmount(cents int64) string {
	return statement.FormatAmount(cents)
}

// amountInput renders cents the way ParseAmount reads them back.
func amountInput(cents int64) string {
	return strings.TrimSuffix(strings.TrimPrefix(FormatAmount(cents), "+"), " R$")
}

// FormatDate formats a time.Time into DD/MM/YYYY HH:MM.
func FormatDate(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
