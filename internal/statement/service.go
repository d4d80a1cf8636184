// Package statement builds the movement history of a single cpf from the transaction log.
package statement

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

// Source is the read side the statement needs. *ledger.Query satisfies it.
type Source interface {
	FindAccountByCPF(ctx context.Context, cpf string) (*account.Account, error)
	ListTransactionsByCPF(ctx context.Context, cpf string) ([]*transaction.Transaction, error)
}

// Entry is one movement seen from the statement owner's side. Amount is negative for money
// leaving the account.
type Entry struct {
	TransactionID uuid.UUID
	Date          time.Time
	Kind          transaction.Kind
	Amount        int64
	Counterparty  string
}

type Statement struct {
	CPF string
	// Account is nil when the account was deleted but its history remains.
	Account *account.Account
	Entries []Entry
	Net     int64
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Build returns the statement for cpf. It fails with ledger.ErrNotFound only when there is
// neither an account nor any recorded movement for the cpf.
func (s *Service) Build(ctx context.Context, cpf string) (*Statement, error) {
	cpf = account.NormalizeCPF(cpf)

	acc, err := s.source.FindAccountByCPF(ctx, cpf)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return nil, fmt.Errorf("finding account: %w", err)
	}

	txs, err := s.source.ListTransactionsByCPF(ctx, cpf)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if acc == nil && len(txs) == 0 {
		return nil, fmt.Errorf("statement for %s: %w", cpf, ledger.ErrNotFound)
	}

	st := &Statement{
		CPF:     cpf,
		Account: acc,
		Entries: make([]Entry, 0, len(txs)),
	}

	for _, tx := range txs {
		e := entryFor(cpf, tx)
		st.Entries = append(st.Entries, e)
		st.Net += e.Amount
	}

	return st, nil
}

func entryFor(cpf string, tx *transaction.Transaction) Entry {
	e := Entry{
		TransactionID: tx.ID,
		Date:          tx.CreatedAt,
		Kind:          tx.Details.Kind,
		Amount:        tx.Details.Amount,
	}

	switch tx.Details.Kind {
	case transaction.KindWithdraw:
		e.Amount = -e.Amount
	case transaction.KindTransfer:
		if tx.Details.DepositerCPF == cpf {
			e.Amount = -e.Amount
			e.Counterparty = tx.Details.ReceiverCPF
		} else {
			e.Counterparty = tx.Details.DepositerCPF
		}
	}

	return e
}

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount renders cents as a signed amount in reais, e.g. "+1.234,56 R$".
func FormatAmount(cents int64) string {
	sign := "+"
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return sign + printer.Sprint(number.Decimal(float64(cents)/100, number.Scale(2))) + " R$"
}

// FormatCPF renders bare digits as 000.000.000-00.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}

	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}

func describe(e Entry) string {
	switch e.Kind {
	case transaction.KindDeposit:
		return "Depósito"
	case transaction.KindWithdraw:
		return "Saque"
	case transaction.KindTransfer:
		if e.Amount < 0 {
			return "Transferência enviada para " + FormatCPF(e.Counterparty)
		}

		return "Transferência recebida de " + FormatCPF(e.Counterparty)
	}

	return string(e.Kind)
}

// Render writes the statement as plain text, one line per movement.
func Render(st *Statement) string {
	var sb strings.Builder

	holder := "Conta encerrada"
	if st.Account != nil {
		holder = st.Account.FullName
	}

	fmt.Fprintf(&sb, "Extrato %s | %s\n", FormatCPF(st.CPF), holder)

	for _, e := range st.Entries {
		fmt.Fprintf(&sb, "* %s | %s | %s\n", e.Date.Format("2006-01-02"), describe(e), FormatAmount(e.Amount))
	}

	fmt.Fprintf(&sb, "Saldo do período: %s\n", FormatAmount(st.Net))

	if st.Account != nil {
		fmt.Fprintf(&sb, "Saldo atual: %s\n", FormatAmount(st.Account.Balance))
	}

	return sb.String()
}

// Save writes the rendered statement into dir and returns the file path.
func Save(st *Statement, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("extrato_%s_%s.txt", st.CPF, now.Format("20060102")))

	if err := os.WriteFile(path, []byte(Render(st)), 0o644); err != nil {
		return "", fmt.Errorf("writing statement: %w", err)
	}

	return path, nil
}
