package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("transaction not found")

	// ErrInvalidDetails is returned by stores asked to append a record whose details do not validate.
	ErrInvalidDetails = errors.New("invalid transaction details")
)

// Kind tags the shape of a transaction's details.
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// Transaction is an immutable record of a completed ledger operation.
type Transaction struct {
	ID        uuid.UUID
	Details   Details
	CreatedAt time.Time
}

// Details describes what a transaction did. Accounts are referenced by cpf, not by id,
// so records stay readable after an account is deleted.
// Transfers fill ReceiverCPF and DepositerCPF; deposits and withdrawals fill CPF.
type Details struct {
	Kind         Kind   `json:"transaction_type"`
	Amount       int64  `json:"amount"`
	CPF          string `json:"cpf,omitempty"`
	ReceiverCPF  string `json:"receiverCpf,omitempty"`
	DepositerCPF string `json:"depositerCpf,omitempty"`
}

func TransferDetails(receiverCPF, depositerCPF string, amount int64) Details {
	return Details{Kind: KindTransfer, Amount: amount, ReceiverCPF: receiverCPF, DepositerCPF: depositerCPF}
}

func DepositDetails(cpf string, amount int64) Details {
	return Details{Kind: KindDeposit, Amount: amount, CPF: cpf}
}

func WithdrawDetails(cpf string, amount int64) Details {
	return Details{Kind: KindWithdraw, Amount: amount, CPF: cpf}
}

// Involves reports whether cpf is on either side of the transaction.
func (d Details) Involves(cpf string) bool {
	switch d.Kind {
	case KindTransfer:
		return d.ReceiverCPF == cpf || d.DepositerCPF == cpf
	default:
		return d.CPF == cpf
	}
}

// Validate checks that the fields required by the kind are present.
func (d Details) Validate() error {
	if d.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", d.Amount)
	}

	switch d.Kind {
	case KindTransfer:
		if d.ReceiverCPF == "" || d.DepositerCPF == "" {
			return errors.New("transfer requires receiver and depositer cpf")
		}
	case KindDeposit, KindWithdraw:
		if d.CPF == "" {
			return fmt.Errorf("%s requires cpf", d.Kind)
		}
	default:
		return fmt.Errorf("unknown transaction kind %q", d.Kind)
	}

	return nil
}

// UnmarshalJSON accepts the transfer payload without a type tag, which is how transfers
// were recorded before the tag was added to them.
func (d *Details) UnmarshalJSON(b []byte) error {
	type plain Details

	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	if p.Kind == "" && p.ReceiverCPF != "" && p.DepositerCPF != "" {
		p.Kind = KindTransfer
	}

	*d = Details(p)

	return nil
}
