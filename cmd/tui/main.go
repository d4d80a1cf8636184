package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/conta/internal/config"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/logging"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	"github.com/MrJamesThe3rd/conta/internal/storage"
)

const logFile = "conta-tui.log"

type model struct {
	engine     *ledger.Engine
	query      *ledger.Query
	statements *statement.Service
	importer   *importer.Service

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu View = iota
	ViewAccounts
	ViewTransactions
	ViewOperation
	ViewStatement
	ViewImport
)

type menuEntry struct {
	key   string
	label string
	open  func(m model) (View, view.View)
}

var menu = []menuEntry{
	{"1", "Contas", func(m model) (View, view.View) { return ViewAccounts, view.NewAccountsModel(m.engine, m.query) }},
	{"2", "Abrir conta", func(m model) (View, view.View) {
		return ViewOperation, view.NewOperationModel(m.engine, view.OperationCreate)
	}},
	{"3", "Depósito", func(m model) (View, view.View) {
		return ViewOperation, view.NewOperationModel(m.engine, view.OperationDeposit)
	}},
	{"4", "Saque", func(m model) (View, view.View) {
		return ViewOperation, view.NewOperationModel(m.engine, view.OperationWithdraw)
	}},
	{"5", "Transferência", func(m model) (View, view.View) {
		return ViewOperation, view.NewOperationModel(m.engine, view.OperationTransfer)
	}},
	{"6", "Transações", func(m model) (View, view.View) { return ViewTransactions, view.NewTransactionsModel(m.query) }},
	{"7", "Extrato", func(m model) (View, view.View) { return ViewStatement, view.NewStatementModel(m.statements) }},
	{"8", "Importar contas", func(m model) (View, view.View) { return ViewImport, view.NewImportModel(m.importer) }},
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			if msg.String() == "q" {
				return m, tea.Quit
			}

			for _, e := range menu {
				if msg.String() == e.key {
					m.currentView, m.active = e.open(m)
					return m, m.active.Init()
				}
			}

			return m, nil
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	newModel, cmd := m.active.Update(msg)
	if v, ok := newModel.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		s := titleStyle.Render("Conta TUI") + "\n\n"
		for _, e := range menu {
			s += e.key + ". " + e.label + "\n"
		}

		return lipgloss.NewStyle().Padding(2).Render(s + "\nq. Quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.active.View(),
		helpStyle.PaddingLeft(2).Render(m.active.ShortHelp()),
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	logger, err := logging.New(f, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := ledger.NewEngine(store.Accounts, store.Transactions,
		ledger.WithLogger(logger),
		ledger.WithMaxRetries(cfg.Ledger.MaxRetries),
	)
	query := ledger.NewQuery(store.Accounts, store.Transactions)

	m := model{
		engine:      engine,
		query:       query,
		statements:  statement.NewService(query),
		importer:    importer.NewService(engine),
		currentView: ViewMenu,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
