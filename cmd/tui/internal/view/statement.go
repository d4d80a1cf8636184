package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/statement"
)

const statementTimeout = 30 * time.Second

type statementState int

const (
	statementStateForm statementState = iota
	statementStateLoading
	statementStateResult
)

type statementFields struct {
	cpf  string
	path string
}

type StatementModel struct {
	service *statement.Service

	state    statementState
	form     *huh.Form
	fields   *statementFields
	spinner  spinner.Model
	viewport viewport.Model

	st     *statement.Statement
	status string
	err    error
}

func NewStatementModel(svc *statement.Service) StatementModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := StatementModel{
		service:  svc,
		fields:   &statementFields{path: "./extratos"},
		spinner:  s,
		viewport: viewport.New(80, 18),
	}
	m.form = m.buildForm()

	return m
}

func (m StatementModel) Title() string { return "Extrato" }

func (m StatementModel) ShortHelp() string {
	if m.state == statementStateResult {
		return "Esc: back | s: save | ↑/↓: scroll"
	}

	return "Esc: back | Enter: confirm"
}

func (m StatementModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m StatementModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("cpf").
				Title("CPF").
				Placeholder("000.000.000-00").
				Value(&m.fields.cpf).
				Validate(validCPF),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./extratos").
				Value(&m.fields.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statementBuiltMsg:
		m.state = statementStateResult
		m.err = msg.err
		m.st = msg.st

		if msg.st != nil {
			m.viewport.SetContent(statement.Render(msg.st))
		}

		return m, nil

	case statementSavedMsg:
		m.status = "Saved to " + msg.path
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	switch m.state {
	case statementStateForm:
		return m.updateForm(msg)
	case statementStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case statementStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "s" && m.st != nil {
			return m, m.saveCmd()
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m StatementModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = statementStateLoading

	return m, tea.Batch(m.spinner.Tick, m.buildCmd(m.fields.cpf))
}

func (m StatementModel) View() string {
	switch m.state {
	case statementStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case statementStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Building statement...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := m.viewport.View()
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", successStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type statementBuiltMsg struct {
	st  *statement.Statement
	err error
}

type statementSavedMsg struct {
	path string
	err  error
}

func (m StatementModel) buildCmd(cpf string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statementTimeout)
		defer cancel()

		st, err := m.service.Build(ctx, cpf)

		return statementBuiltMsg{st: st, err: err}
	}
}

func (m StatementModel) saveCmd() tea.Cmd {
	st, dir := m.st, m.fields.path

	return func() tea.Msg {
		path, err := statement.Save(st, dir, time.Now())
		return statementSavedMsg{path: path, err: err}
	}
}
