package statement_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/account"
	accountmem "github.com/MrJamesThe3rd/conta/internal/account/memstore"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	transactionmem "github.com/MrJamesThe3rd/conta/internal/transaction/memstore"
)

const (
	cpfAna   = "95759897080"
	cpfBruno = "27195610020"
)

func setup(t *testing.T) (*ledger.Engine, *statement.Service) {
	t.Helper()

	accounts := accountmem.New()
	transactions := transactionmem.New()

	engine := ledger.NewEngine(accounts, transactions, ledger.WithLogger(slog.New(slog.DiscardHandler)))
	svc := statement.NewService(ledger.NewQuery(accounts, transactions))

	ctx := context.Background()

	for _, cpf := range []string{cpfAna, cpfBruno} {
		_, err := engine.CreateAccount(ctx, ledger.CreateAccountParams{
			FullName: "Titular " + cpf,
			Type:     account.TypeCorrente,
			CPF:      cpf,
			Balance:  10000,
		})
		require.NoError(t, err)
	}

	return engine, svc
}

func TestService_Build(t *testing.T) {
	engine, svc := setup(t)
	ctx := context.Background()

	_, err := engine.Deposit(ctx, ledger.MovementParams{CPF: cpfAna, Amount: 5000})
	require.NoError(t, err)
	_, err = engine.Transfer(ctx, ledger.TransferParams{ReceiverCPF: cpfBruno, DepositerCPF: cpfAna, Amount: 2500})
	require.NoError(t, err)
	_, err = engine.Transfer(ctx, ledger.TransferParams{ReceiverCPF: cpfAna, DepositerCPF: cpfBruno, Amount: 1000})
	require.NoError(t, err)
	_, err = engine.Withdraw(ctx, ledger.MovementParams{CPF: cpfAna, Amount: 300})
	require.NoError(t, err)
	_, err = engine.Deposit(ctx, ledger.MovementParams{CPF: cpfBruno, Amount: 99})
	require.NoError(t, err)

	st, err := svc.Build(ctx, "957.598.970-80")
	require.NoError(t, err)

	require.Len(t, st.Entries, 4)
	assert.Equal(t, []int64{5000, -2500, 1000, -300}, []int64{
		st.Entries[0].Amount, st.Entries[1].Amount, st.Entries[2].Amount, st.Entries[3].Amount,
	})
	assert.Equal(t, cpfBruno, st.Entries[1].Counterparty)
	assert.Equal(t, cpfBruno, st.Entries[2].Counterparty)
	assert.Equal(t, int64(3200), st.Net)
	require.NotNil(t, st.Account)
	assert.Equal(t, st.Account.Balance, int64(10000)+st.Net)
}

func TestService_BuildDeletedAccountKeepsHistory(t *testing.T) {
	engine, svc := setup(t)
	ctx := context.Background()

	_, err := engine.Deposit(ctx, ledger.MovementParams{CPF: cpfAna, Amount: 100})
	require.NoError(t, err)

	st, err := svc.Build(ctx, cpfAna)
	require.NoError(t, err)
	require.NoError(t, engine.DeleteAccount(ctx, st.Account.ID))

	st, err = svc.Build(ctx, cpfAna)
	require.NoError(t, err)
	assert.Nil(t, st.Account)
	assert.Len(t, st.Entries, 1)
	assert.Contains(t, statement.Render(st), "Conta encerrada")
}

func TestService_BuildUnknownCPF(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Build(context.Background(), "52601815906")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "+50,00 R$", statement.FormatAmount(5000))
	assert.Equal(t, "-1.234,56 R$", statement.FormatAmount(-123456))
	assert.Equal(t, "+0,07 R$", statement.FormatAmount(7))
}

func TestRenderAndSave(t *testing.T) {
	engine, svc := setup(t)
	ctx := context.Background()

	_, err := engine.Transfer(ctx, ledger.TransferParams{ReceiverCPF: cpfBruno, DepositerCPF: cpfAna, Amount: 2500})
	require.NoError(t, err)

	st, err := svc.Build(ctx, cpfAna)
	require.NoError(t, err)

	text := statement.Render(st)
	assert.True(t, strings.HasPrefix(text, "Extrato 957.598.970-80 | Titular 95759897080\n"))
	assert.Contains(t, text, "Transferência enviada para 271.956.100-20 | -25,00 R$")
	assert.Contains(t, text, "Saldo atual: +75,00 R$")

	dir := t.TempDir()

	path, err := statement.Save(st, dir, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extrato_95759897080_20240301.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(content))
}
