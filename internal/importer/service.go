package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
)

// AccountCreator is the part of the ledger engine an import needs.
type AccountCreator interface {
	CreateAccount(ctx context.Context, p ledger.CreateAccountParams) (*account.Account, error)
}

type Result struct {
	Charset string
	Created []*account.Account
	Failed  []Failure
}

type Service struct {
	accounts AccountCreator
}

func NewService(accounts AccountCreator) *Service {
	return &Service{accounts: accounts}
}

// Import creates one account per row. A row the ledger refuses (bad cpf, cpf already registered)
// is reported in Result.Failed and does not stop the rows after it. Only unreadable input or a
// storage failure aborts the import; accounts created before that point stay created.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	rows, failed, charset, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	res := &Result{
		Charset: charset,
		Created: make([]*account.Account, 0, len(rows)),
		Failed:  failed,
	}

	for _, row := range rows {
		acc, err := s.accounts.CreateAccount(ctx, ledger.CreateAccountParams{
			FullName: row.FullName,
			Type:     row.Type,
			CPF:      row.CPF,
			Balance:  row.Balance,
		})
		if err != nil {
			if isStorageFailure(err) {
				return res, fmt.Errorf("line %d: %w", row.Line, err)
			}

			res.Failed = append(res.Failed, Failure{Line: row.Line, CPF: row.CPF, Reason: err.Error()})

			continue
		}

		res.Created = append(res.Created, acc)
	}

	slices.SortStableFunc(res.Failed, func(a, b Failure) int { return a.Line - b.Line })

	slog.Info("accounts imported", "charset", charset, "created", len(res.Created), "failed", len(res.Failed))

	return res, nil
}

func isStorageFailure(err error) bool {
	return errors.Is(err, ledger.ErrStorage) || errors.Is(err, ledger.ErrConcurrencyConflict)
}
