// Package importer bulk-creates accounts from a semicolon separated spreadsheet export.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

const (
	colName    = "nome"
	colType    = "tipo"
	colCPF     = "cpf"
	colBalance = "saldo"
)

var ErrNoHeader = errors.New("no header with Nome, Tipo and CPF columns found")

// Row is one account line of the file. Line is the 1-based line number in the file.
type Row struct {
	Line     int
	FullName string
	Type     account.Type
	CPF      string
	Balance  int64
}

// Failure is a line that could not be turned into an account.
type Failure struct {
	Line   int    `json:"line"`
	CPF    string `json:"cpf,omitempty"`
	Reason string `json:"reason"`
}

type columns map[string]int

func headerColumns(record []string) (columns, bool) {
	cols := make(columns)

	for i, cell := range record {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}

	for _, required := range []string{colName, colType, colCPF} {
		if _, ok := cols[required]; !ok {
			return nil, false
		}
	}

	return cols, true
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

func parseType(s string) (account.Type, bool) {
	switch strings.ToLower(s) {
	case "corrente", "conta corrente":
		return account.TypeCorrente, true
	case "poupança", "poupanca", "conta poupança", "conta poupanca":
		return account.TypePoupanca, true
	}

	return "", false
}

// Parse reads the file into rows. Lines before the header are skipped, blank lines are ignored,
// and lines that cannot be read come back as failures instead of aborting the whole file.
// The returned charset names the encoding the input was decoded from.
func Parse(r io.Reader) ([]Row, []Failure, string, error) {
	utf8r, charset, err := decodeUTF8(r)
	if err != nil {
		return nil, nil, "", fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		cols     columns
		rows     []Row
		failures []Failure
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, charset, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if cols == nil {
			if found, ok := headerColumns(record); ok {
				cols = found
			}

			continue
		}

		if blank(record) {
			continue
		}

		row, err := parseRow(cols, record, line)
		if err != nil {
			failures = append(failures, Failure{Line: line, CPF: account.NormalizeCPF(cols.get(record, colCPF)), Reason: err.Error()})
			continue
		}

		rows = append(rows, row)
	}

	if cols == nil {
		return nil, nil, charset, ErrNoHeader
	}

	return rows, failures, charset, nil
}

func parseRow(cols columns, record []string, line int) (Row, error) {
	accType, ok := parseType(cols.get(record, colType))
	if !ok {
		return Row{}, fmt.Errorf("unknown account type %q", cols.get(record, colType))
	}

	balance, err := ParseAmount(cols.get(record, colBalance))
	if err != nil {
		return Row{}, fmt.Errorf("invalid balance %q: %w", cols.get(record, colBalance), err)
	}

	return Row{
		Line:     line,
		FullName: cols.get(record, colName),
		Type:     accType,
		CPF:      account.NormalizeCPF(cols.get(record, colCPF)),
		Balance:  balance,
	}, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
