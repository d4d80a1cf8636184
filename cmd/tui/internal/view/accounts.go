package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/statement"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateEdit
	accountsStateDelete
)

type AccountsModel struct {
	engine *ledger.Engine
	query  *ledger.Query

	state accountsState
	table table.Model
	accs  []*account.Account
	form  *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings live behind a pointer so they survive model copies.
	fields *accountFields
}

func NewAccountsModel(engine *ledger.Engine, query *ledger.Query) AccountsModel {
	columns := []table.Column{
		{Title: "Titular", Width: 30},
		{Title: "CPF", Width: 16},
		{Title: "Tipo", Width: 10},
		{Title: "Saldo", Width: 18},
		{Title: "Atualizada", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return AccountsModel{
		engine:  engine,
		query:   query,
		table:   t,
		fields:  &accountFields{},
		loading: true,
	}
}

func (m AccountsModel) Title() string { return "Contas" }

func (m AccountsModel) ShortHelp() string {
	if m.state != accountsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.accs = msg.accs
		m.refreshTable()

		return m, nil

	case accountSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == accountsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m AccountsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEdit()
		case "x":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) selected() *account.Account {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accs) {
		return nil
	}

	return m.accs[idx]
}

func (m AccountsModel) enterEdit() (tea.Model, tea.Cmd) {
	acc := m.selected()
	if acc == nil {
		return m, nil
	}

	*m.fields = accountFields{
		name:    acc.FullName,
		accType: acc.Type,
		cpf:     acc.CPF,
		balance: amountInput(acc.Balance),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Titular").
				Value(&m.fields.name).
				Validate(requiredText("name")),
			huh.NewSelect[account.Type]().
				Key("type").
				Title("Tipo").
				Options(accountTypeOptions()...).
				Value(&m.fields.accType),
			huh.NewInput().
				Key("cpf").
				Title("CPF").
				Value(&m.fields.cpf).
				Validate(validCPF),
			huh.NewInput().
				Key("balance").
				Title("Saldo").
				Description("Overwrites the balance without a transaction record").
				Value(&m.fields.balance).
				Validate(validAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) enterDelete() (tea.Model, tea.Cmd) {
	acc := m.selected()
	if acc == nil {
		return m, nil
	}

	m.fields.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Encerrar a conta de %s?", acc.FullName)).
				Description("The transaction history is kept").
				Affirmative("Encerrar").
				Negative("Cancelar").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == accountsStateDelete {
		if !m.fields.confirm {
			m.state = accountsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd()
	}

	return m, m.saveCmd()
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	var total int64
	for _, acc := range m.accs {
		total += acc.Balance
	}

	header := fmt.Sprintf("%d contas | Total: %s", len(m.accs), activeStyle(FormatAmount(total)))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != accountsStateBrowse && m.form != nil {
		title := "Editar conta"
		if m.state == accountsStateDelete {
			title = "Encerrar conta"
		}

		panel := panelStyle.Width(48).Render(title + "\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accs))
	for _, acc := range m.accs {
		rows = append(rows, table.Row{
			acc.FullName,
			statement.FormatCPF(acc.CPF),
			string(acc.Type),
			FormatAmount(acc.Balance),
			FormatDate(acc.UpdatedAt),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadAccountsMsg struct {
	accs []*account.Account
	err  error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.query.ListAccounts(ctx)

		return loadAccountsMsg{accs: accs, err: err}
	}
}

type accountSavedMsg struct {
	status string
	err    error
}

func (m AccountsModel) saveCmd() tea.Cmd {
	acc := m.selected()
	if acc == nil {
		return nil
	}

	id := acc.ID
	params := ledger.UpdateAccountParams{
		FullName: m.fields.name,
		Type:     m.fields.accType,
		CPF:      m.fields.cpf,
	}
	balance := m.fields.balance

	return func() tea.Msg {
		cents, err := importer.ParseAmount(balance)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		params.Balance = cents

		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.engine.UpdateAccount(ctx, id, params)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: "Conta de " + updated.FullName + " atualizada"}
	}
}

func (m AccountsModel) deleteCmd() tea.Cmd {
	acc := m.selected()
	if acc == nil {
		return nil
	}

	id, name := acc.ID, acc.FullName

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.engine.DeleteAccount(ctx, id); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: "Conta de " + name + " encerrada"}
	}
}
