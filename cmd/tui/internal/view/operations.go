package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
)

// Operation selects which ledger call an OperationModel performs.
type Operation int

const (
	OperationCreate Operation = iota
	OperationDeposit
	OperationWithdraw
	OperationTransfer
)

func (o Operation) String() string {
	switch o {
	case OperationCreate:
		return "Abrir conta"
	case OperationDeposit:
		return "Depósito"
	case OperationWithdraw:
		return "Saque"
	case OperationTransfer:
		return "Transferência"
	}

	return "Unknown"
}

type operationState int

const (
	operationStateForm operationState = iota
	operationStateRunning
	operationStateResult
)

type accountFields struct {
	name     string
	accType  account.Type
	cpf      string
	cpfOther string
	balance  string
	confirm  bool
}

type OperationModel struct {
	engine *ledger.Engine
	op     Operation

	state  operationState
	form   *huh.Form
	fields *accountFields

	status string
	err    error
}

func NewOperationModel(engine *ledger.Engine, op Operation) OperationModel {
	m := OperationModel{
		engine: engine,
		op:     op,
		fields: &accountFields{accType: account.TypeCorrente},
	}
	m.form = m.buildForm()

	return m
}

func (m OperationModel) Title() string { return m.op.String() }

func (m OperationModel) ShortHelp() string {
	if m.state == operationStateResult {
		return "Esc: back | n: new"
	}

	return "Navigate form | Esc: back"
}

func (m OperationModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m OperationModel) buildForm() *huh.Form {
	f := m.fields

	var fields []huh.Field

	switch m.op {
	case OperationCreate:
		fields = []huh.Field{
			huh.NewInput().Key("name").Title("Titular").Value(&f.name).Validate(requiredText("name")),
			huh.NewSelect[account.Type]().Key("type").Title("Tipo").Options(accountTypeOptions()...).Value(&f.accType),
			huh.NewInput().Key("cpf").Title("CPF").Placeholder("000.000.000-00").Value(&f.cpf).Validate(validCPF),
			huh.NewInput().Key("balance").Title("Saldo inicial").Placeholder("0,00").Value(&f.balance).Validate(validAmount),
		}
	case OperationDeposit, OperationWithdraw:
		fields = []huh.Field{
			huh.NewInput().Key("cpf").Title("CPF").Placeholder("000.000.000-00").Value(&f.cpf).Validate(validCPF),
			huh.NewInput().Key("amount").Title("Valor").Placeholder("0,00").Value(&f.balance).Validate(positiveAmount),
		}
	case OperationTransfer:
		fields = []huh.Field{
			huh.NewInput().Key("depositer").Title("CPF de origem").Value(&f.cpf).Validate(validCPF),
			huh.NewInput().Key("receiver").Title("CPF de destino").Value(&f.cpfOther).Validate(func(s string) error {
				if err := validCPF(s); err != nil {
					return err
				}

				if account.NormalizeCPF(s) == account.NormalizeCPF(f.cpf) {
					return errors.New("receiver must differ from depositer")
				}

				return nil
			}),
			huh.NewInput().Key("amount").Title("Valor").Placeholder("0,00").Value(&f.balance).Validate(positiveAmount),
			huh.NewConfirm().Key("confirm").Title("Confirmar transferência?").Value(&f.confirm),
		}
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

func (m OperationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(operationResultMsg); ok {
		m.state = operationStateResult
		m.err = result.err
		m.status = result.status

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == operationStateResult && keyMsg.String() == "n" {
			next := NewOperationModel(m.engine, m.op)
			return next, next.Init()
		}
	}

	if m.state != operationStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.op == OperationTransfer && !m.fields.confirm {
		return m, Back
	}

	m.state = operationStateRunning

	return m, m.runCmd()
}

func (m OperationModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.op.String())

	switch m.state {
	case operationStateRunning:
		return lipgloss.NewStyle().Padding(1).Render(title + "\n\nProcessing...")
	case operationStateResult:
		body := successStyle.Render(m.status)
		if m.err != nil {
			body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		}

		return lipgloss.NewStyle().Padding(1).Render(title + "\n\n" + body + "\n\n(n: new | Esc: back)")
	}

	return lipgloss.NewStyle().Padding(1).Render(title + "\n\n" + panelStyle.Render(m.form.View()))
}

type operationResultMsg struct {
	status string
	err    error
}

func (m OperationModel) runCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		amount, err := importer.ParseAmount(f.balance)
		if err != nil {
			return operationResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		switch m.op {
		case OperationCreate:
			acc, err := m.engine.CreateAccount(ctx, ledger.CreateAccountParams{
				FullName: f.name,
				Type:     f.accType,
				CPF:      f.cpf,
				Balance:  amount,
			})
			if err != nil {
				return operationResultMsg{err: err}
			}

			return operationResultMsg{status: fmt.Sprintf("Conta aberta para %s com saldo %s", acc.FullName, FormatAmount(acc.Balance))}

		case OperationDeposit:
			id, err := m.engine.Deposit(ctx, ledger.MovementParams{CPF: f.cpf, Amount: amount})
			if err != nil {
				return operationResultMsg{err: err}
			}

			return operationResultMsg{status: fmt.Sprintf("Depósito de %s registrado (%s)", FormatAmount(amount), id)}

		case OperationWithdraw:
			id, err := m.engine.Withdraw(ctx, ledger.MovementParams{CPF: f.cpf, Amount: amount})
			if err != nil {
				return operationResultMsg{err: err}
			}

			return operationResultMsg{status: fmt.Sprintf("Saque de %s registrado (%s)", FormatAmount(amount), id)}

		case OperationTransfer:
			id, err := m.engine.Transfer(ctx, ledger.TransferParams{
				ReceiverCPF:  f.cpfOther,
				DepositerCPF: f.cpf,
				Amount:       amount,
			})
			if err != nil {
				return operationResultMsg{err: err}
			}

			return operationResultMsg{status: fmt.Sprintf("Transferência de %s registrada (%s)", FormatAmount(amount), id)}
		}

		return operationResultMsg{err: fmt.Errorf("unknown operation %d", m.op)}
	}
}

// Form validators

func accountTypeOptions() []huh.Option[account.Type] {
	return []huh.Option[account.Type]{
		huh.NewOption("Conta corrente", account.TypeCorrente),
		huh.NewOption("Conta poupança", account.TypePoupanca),
	}
}

func requiredText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validCPF(s string) error {
	if !account.ValidCPF(account.NormalizeCPF(s)) {
		return errors.New("invalid cpf")
	}

	return nil
}

func validAmount(s string) error {
	_, err := importer.ParseAmount(s)
	return err
}

func positiveAmount(s string) error {
	cents, err := importer.ParseAmount(s)
	if err != nil {
		return err
	}

	if cents <= 0 {
		return errors.New("amount must be positive")
	}

	if cents > ledger.MaxAmount {
		return errors.New("amount above the per-operation limit")
	}

	return nil
}
