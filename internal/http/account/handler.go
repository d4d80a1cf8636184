package account

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/statement"
)

const maxUploadSize = 10 << 20

type Handler struct {
	engine     *ledger.Engine
	query      *ledger.Query
	statements *statement.Service
	importer   *importer.Service
}

func NewHandler(engine *ledger.Engine, query *ledger.Query, statements *statement.Service, imports *importer.Service) *Handler {
	return &Handler{
		engine:     engine,
		query:      query,
		statements: statements,
		importer:   imports,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/transfer", h.transfer)
	r.Post("/deposit", h.deposit)
	r.Post("/withdraw", h.withdraw)
	r.Post("/import", h.importCSV)
	r.Get("/list", h.list)
	r.Get("/transactions", h.listTransactions)
	r.Get("/transactions/{id}", h.getTransaction)
	r.Get("/statement/{cpf}", h.statement)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid id", "id must be a uuid", nil)
		return uuid.Nil, false
	}

	return id, true
}

type accountRequest struct {
	FullName string       `json:"fullName" validate:"required"`
	AccType  account.Type `json:"accType" validate:"required,oneof=corrente poupança"`
	CPF      string       `json:"cpf" validate:"required,cpf"`
	Balance  int64        `json:"balance" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := bind[accountRequest](w, r)
	if !ok {
		return
	}

	acc, err := h.engine.CreateAccount(r.Context(), ledger.CreateAccountParams{
		FullName: req.FullName,
		Type:     req.AccType,
		CPF:      req.CPF,
		Balance:  req.Balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

type transferRequest struct {
	ReceiverCPF  string `json:"receiverCpf" validate:"required,cpf"`
	DepositerCPF string `json:"depositerCpf" validate:"required,cpf,nefield=ReceiverCPF"`
	Amount       int64  `json:"amount" validate:"gt=0,lte=100000000000000"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	req, ok := bind[transferRequest](w, r)
	if !ok {
		return
	}

	id, err := h.engine.Transfer(r.Context(), ledger.TransferParams{
		ReceiverCPF:  req.ReceiverCPF,
		DepositerCPF: req.DepositerCPF,
		Amount:       req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, movementResponse{TransactionID: id})
}

type movementRequest struct {
	CPF    string `json:"cpf" validate:"required,cpf"`
	Amount int64  `json:"amount" validate:"gt=0,lte=100000000000000"`
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	req, ok := bind[movementRequest](w, r)
	if !ok {
		return
	}

	id, err := h.engine.Deposit(r.Context(), ledger.MovementParams{CPF: req.CPF, Amount: req.Amount})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, movementResponse{TransactionID: id})
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := bind[movementRequest](w, r)
	if !ok {
		return
	}

	id, err := h.engine.Withdraw(r.Context(), ledger.MovementParams{CPF: req.CPF, Amount: req.Amount})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, movementResponse{TransactionID: id})
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid upload", "failed to parse form: "+err.Error(), nil)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid upload", "missing file field", nil)
		return
	}
	defer file.Close()

	res, err := h.importer.Import(r.Context(), file)
	if err != nil {
		if res == nil {
			writeProblem(w, r, http.StatusBadRequest, "Invalid upload", err.Error(), nil)
			return
		}

		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toImportResponse(res))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accs, err := h.query.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountList(accs))
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.query.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionList(txs))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, err := h.query.FindTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	cpf := account.NormalizeCPF(chi.URLParam(r, "cpf"))
	if !account.ValidCPF(cpf) {
		writeProblem(w, r, http.StatusBadRequest, "Validation failed", "cpf must be a valid cpf", nil)
		return
	}

	st, err := h.statements.Build(r.Context(), cpf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if _, err := w.Write([]byte(statement.Render(st))); err != nil {
			slog.Error("failed to write statement", "error", err)
		}

		return
	}

	writeJSON(w, http.StatusOK, toStatementResponse(st))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	acc, err := h.query.FindAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	req, ok := bind[accountRequest](w, r)
	if !ok {
		return
	}

	acc, err := h.engine.UpdateAccount(r.Context(), id, ledger.UpdateAccountParams{
		FullName: req.FullName,
		Type:     req.AccType,
		CPF:      req.CPF,
		Balance:  req.Balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.engine.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
