package importer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/conta/internal/account"
	accountmem "github.com/MrJamesThe3rd/conta/internal/account/memstore"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	transactionmem "github.com/MrJamesThe3rd/conta/internal/transaction/memstore"
)

const sample = `Relatório de clientes - agência 0001
Nome;Tipo;CPF;Saldo
Ana Souza;corrente;957.598.970-80;1.234,56
Bruno Lima;Poupança;27195610020;R$ 10,00
;;;
Carla Dias;investimento;52601815906;5,00
Diego Alves;corrente;08301661305;1,234
Elisa Rocha;poupanca;99603082430;
`

func TestParse(t *testing.T) {
	type testCase struct {
		name    string
		input   []byte
		verify  func(t *testing.T, rows []importer.Row, failed []importer.Failure, charset string)
		wantErr error
	}

	tests := []testCase{
		{
			name:  "UTF8",
			input: []byte(sample),
			verify: func(t *testing.T, rows []importer.Row, failed []importer.Failure, charset string) {
				assert.Equal(t, "UTF-8", charset)
				require.Len(t, rows, 3)

				assert.Equal(t, importer.Row{Line: 3, FullName: "Ana Souza", Type: account.TypeCorrente, CPF: "95759897080", Balance: 123456}, rows[0])
				assert.Equal(t, account.TypePoupanca, rows[1].Type)
				assert.Equal(t, int64(1000), rows[1].Balance)
				assert.Equal(t, int64(0), rows[2].Balance)

				require.Len(t, failed, 2)
				assert.Equal(t, 6, failed[0].Line)
				assert.Contains(t, failed[0].Reason, "unknown account type")
				assert.Equal(t, 7, failed[1].Line)
				assert.Equal(t, "08301661305", failed[1].CPF)
			},
		},
		{
			name:  "UTF8WithBOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nome;Tipo;CPF;Saldo\nAna;corrente;95759897080;1,00\n")...),
			verify: func(t *testing.T, rows []importer.Row, _ []importer.Failure, charset string) {
				assert.Equal(t, "UTF-8", charset)
				require.Len(t, rows, 1)
				assert.Equal(t, "Ana", rows[0].FullName)
			},
		},
		{
			name: "Latin1",
			input: []byte("Nome;Tipo;CPF;Saldo\nJo\xe3o Concei\xe7\xe3o;poupan\xe7a;95759897080;2,50\n"),
			verify: func(t *testing.T, rows []importer.Row, _ []importer.Failure, charset string) {
				assert.NotEqual(t, "UTF-8", charset)
				require.Len(t, rows, 1)
				assert.Equal(t, "João Conceição", rows[0].FullName)
				assert.Equal(t, account.TypePoupanca, rows[0].Type)
			},
		},
		{
			name:  "UTF16LE",
			input: utf16LE(t, "Nome;Tipo;CPF;Saldo\nMárcia;corrente;27195610020;3,00\n"),
			verify: func(t *testing.T, rows []importer.Row, _ []importer.Failure, charset string) {
				assert.Equal(t, "UTF-16LE", charset)
				require.Len(t, rows, 1)
				assert.Equal(t, "Márcia", rows[0].FullName)
				assert.Equal(t, int64(300), rows[0].Balance)
			},
		},
		{
			name:  "BalanceOutOfRange",
			input: []byte("Nome;Tipo;CPF;Saldo\nAna;corrente;95759897080;184467440737095516,16\n"),
			verify: func(t *testing.T, rows []importer.Row, failed []importer.Failure, _ string) {
				assert.Empty(t, rows)
				require.Len(t, failed, 1)
				assert.Equal(t, 2, failed[0].Line)
				assert.Contains(t, failed[0].Reason, "out of range")
			},
		},
		{
			name:    "NoHeader",
			input:   []byte("Ana;corrente;95759897080;1,00\n"),
			wantErr: importer.ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, failed, charset, err := importer.Parse(bytes.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, rows, failed, charset)
		})
	}
}

func utf16LE(t *testing.T, s string) []byte {
	t.Helper()

	b, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)

	return b
}

func TestService_Import(t *testing.T) {
	accounts := accountmem.New()
	engine := ledger.NewEngine(accounts, transactionmem.New(), ledger.WithLogger(slog.New(slog.DiscardHandler)))
	ctx := context.Background()

	_, err := engine.CreateAccount(ctx, ledger.CreateAccountParams{
		FullName: "Já Existe",
		Type:     account.TypeCorrente,
		CPF:      "99603082430",
	})
	require.NoError(t, err)

	input := sample + "CPF Inválido;corrente;12345678900;1,00\n"

	res, err := importer.NewService(engine).Import(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, res.Created, 2)
	assert.Equal(t, "95759897080", res.Created[0].CPF)
	assert.Equal(t, int64(123456), res.Created[0].Balance)
	assert.Equal(t, "27195610020", res.Created[1].CPF)

	lines := make([]int, 0, len(res.Failed))
	for _, f := range res.Failed {
		lines = append(lines, f.Line)
	}

	assert.Equal(t, []int{6, 7, 8, 9}, lines)
	assert.Contains(t, res.Failed[2].Reason, "already exists")
	assert.Contains(t, res.Failed[3].Reason, "invalid cpf")

	all, err := accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

type failingCreator struct{}

func (failingCreator) CreateAccount(context.Context, ledger.CreateAccountParams) (*account.Account, error) {
	return nil, &ledger.StorageError{Op: "create account", Err: errors.New("connection refused")}
}

func TestService_ImportStopsOnStorageFailure(t *testing.T) {
	_, err := importer.NewService(failingCreator{}).Import(context.Background(), strings.NewReader(sample))
	require.ErrorIs(t, err, ledger.ErrStorage)
	assert.ErrorContains(t, err, "line 3")
}
