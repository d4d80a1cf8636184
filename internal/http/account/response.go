package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

type accountResponse struct {
	ID        uuid.UUID    `json:"id"`
	FullName  string       `json:"fullName"`
	AccType   account.Type `json:"accType"`
	CPF       string       `json:"cpf"`
	Balance   int64        `json:"balance"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func toAccountResponse(acc *account.Account) accountResponse {
	return accountResponse{
		ID:        acc.ID,
		FullName:  acc.FullName,
		AccType:   acc.Type,
		CPF:       acc.CPF,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

func toAccountList(accs []*account.Account) []accountResponse {
	resp := make([]accountResponse, len(accs))
	for i, acc := range accs {
		resp[i] = toAccountResponse(acc)
	}

	return resp
}

type transactionResponse struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	Details       transaction.Details `json:"details"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func toTransactionResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: tx.ID,
		Details:       tx.Details,
		CreatedAt:     tx.CreatedAt,
	}
}

func toTransactionList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toTransactionResponse(tx)
	}

	return resp
}

type movementResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

type statementEntryResponse struct {
	TransactionID uuid.UUID        `json:"transaction_id"`
	Date          time.Time        `json:"date"`
	Kind          transaction.Kind `json:"transaction_type"`
	Amount        int64            `json:"amount"`
	Counterparty  string           `json:"counterpartyCpf,omitempty"`
}

type statementResponse struct {
	CPF     string                   `json:"cpf"`
	Account *accountResponse         `json:"account,omitempty"`
	Entries []statementEntryResponse `json:"entries"`
	Net     int64                    `json:"net"`
}

func toStatementResponse(st *statement.Statement) statementResponse {
	resp := statementResponse{
		CPF:     st.CPF,
		Entries: make([]statementEntryResponse, len(st.Entries)),
		Net:     st.Net,
	}

	if st.Account != nil {
		resp.Account = new(toAccountResponse(st.Account))
	}

	for i, e := range st.Entries {
		resp.Entries[i] = statementEntryResponse{
			TransactionID: e.TransactionID,
			Date:          e.Date,
			Kind:          e.Kind,
			Amount:        e.Amount,
			Counterparty:  e.Counterparty,
		}
	}

	return resp
}

type importResponse struct {
	Charset  string             `json:"charset"`
	Imported int                `json:"imported"`
	Accounts []accountResponse  `json:"accounts"`
	Failed   []importer.Failure `json:"failed"`
}

func toImportResponse(res *importer.Result) importResponse {
	failed := res.Failed
	if failed == nil {
		failed = []importer.Failure{}
	}

	return importResponse{
		Charset:  res.Charset,
		Imported: len(res.Created),
		Accounts: toAccountList(res.Created),
		Failed:   failed,
	}
}
