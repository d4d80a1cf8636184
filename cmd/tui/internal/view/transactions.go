package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	kind := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.tx.Details.Kind))

	return fmt.Sprintf("%s  %s  %s", FormatDate(i.tx.CreatedAt), FormatAmount(i.tx.Details.Amount), kind)
}

func (i txItem) Description() string {
	d := i.tx.Details
	if d.Kind == transaction.KindTransfer {
		return fmt.Sprintf("%s → %s", statement.FormatCPF(d.DepositerCPF), statement.FormatCPF(d.ReceiverCPF))
	}

	return statement.FormatCPF(d.CPF)
}

// FilterValue lets the list filter by any cpf on the transaction.
func (i txItem) FilterValue() string {
	d := i.tx.Details
	return d.CPF + " " + d.DepositerCPF + " " + d.ReceiverCPF + " " + i.tx.ID.String()
}

type TransactionsModel struct {
	query *ledger.Query

	list    list.Model
	loading bool
	err     error
}

func NewTransactionsModel(query *ledger.Query) TransactionsModel {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Transações"
	l.SetShowHelp(false)

	return TransactionsModel{
		query:   query,
		list:    l,
		loading: true,
	}
}

func (m TransactionsModel) Title() string { return "Transações" }

func (m TransactionsModel) ShortHelp() string {
	return "Esc: back | /: filter by cpf | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		m.err = msg.err

		items := make([]list.Item, len(msg.txs))
		for i, tx := range msg.txs {
			items[i] = txItem{tx: tx}
		}

		return m, m.list.SetItems(items)

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "esc":
				if m.list.FilterState() == list.FilterApplied {
					m.list.ResetFilter()
					return m, nil
				}

				return m, Back
			case "r":
				m.loading = true
				return m, m.loadCmd()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(m.list.View())
}

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.query.ListTransactions(ctx)

		return loadTxsMsg{txs: txs, err: err}
	}
}
