package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conta/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	result      *importer.Result
	failureList list.Model

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Importar contas" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "Esc: back | ↑/↓: browse failures"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result

		if msg.result != nil {
			m.status = fmt.Sprintf("Imported %d accounts (%s), %d lines rejected.",
				len(msg.result.Created), msg.result.Charset, len(msg.result.Failed))
			m.failureList = newFailureList(msg.result.Failed)
		}

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd

	case importStateResult:
		if m.result == nil {
			return m, nil
		}

		var cmd tea.Cmd
		m.failureList, cmd = m.failureList.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.result = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select CSV file (Nome;Tipo;CPF;Saldo):\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err != nil && m.result == nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	header := successStyle.Render(m.status)
	if m.err != nil {
		header = errorStyle.Render(m.status)
	}

	if len(m.result.Failed) == 0 {
		return style.Render(header + "\n\n(Esc to go back)")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.failureList.View()))
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, f)

		return importResultMsg{result: result, err: err}
	}
}

// Failure list

type failureItem struct {
	failure importer.Failure
}

func (i failureItem) Title() string       { return "" }
func (i failureItem) Description() string { return "" }
func (i failureItem) FilterValue() string { return i.failure.CPF }

func newFailureList(failures []importer.Failure) list.Model {
	items := make([]list.Item, len(failures))
	for i, f := range failures {
		items[i] = failureItem{failure: f}
	}

	l := list.New(items, failureDelegate{}, 80, 15)
	l.Title = "Linhas rejeitadas"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type failureDelegate struct{}

func (d failureDelegate) Height() int                             { return 2 }
func (d failureDelegate) Spacing() int                            { return 0 }
func (d failureDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d failureDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(failureItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	cpf := item.failure.CPF
	if cpf == "" {
		cpf = "-"
	}

	fmt.Fprintf(w, "%sLine %d  %s\n    %s\n", cursor, item.failure.Line, cpf, errorStyle.Render(item.failure.Reason))
}
