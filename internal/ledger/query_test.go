package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

func TestQuery_EmptyListsAreNotNil(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := account.NewMockRepository(ctrl)
	transactions := transaction.NewMockRepository(ctrl)

	accounts.EXPECT().List(gomock.Any()).Return(nil, nil)
	transactions.EXPECT().List(gomock.Any(), transaction.ListFilter{}).Return(nil, nil)

	q := ledger.NewQuery(accounts, transactions)

	accs, err := q.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, accs)
	assert.Empty(t, accs)

	txs, err := q.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestQuery_Find(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		setupMock func(a *account.MockRepository, tx *transaction.MockRepository)
		run       func(q *ledger.Query) error
		wantErr   error
	}

	tests := []testCase{
		{
			name: "AccountFound",
			setupMock: func(a *account.MockRepository, _ *transaction.MockRepository) {
				a.EXPECT().GetByID(gomock.Any(), id).Return(&account.Account{ID: id}, nil)
			},
			run: func(q *ledger.Query) error {
				_, err := q.FindAccount(context.Background(), id)
				return err
			},
		},
		{
			name: "AccountMissing",
			setupMock: func(a *account.MockRepository, _ *transaction.MockRepository) {
				a.EXPECT().GetByID(gomock.Any(), id).Return(nil, account.ErrNotFound)
			},
			run: func(q *ledger.Query) error {
				_, err := q.FindAccount(context.Background(), id)
				return err
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name: "TransactionMissing",
			setupMock: func(_ *account.MockRepository, tx *transaction.MockRepository) {
				tx.EXPECT().Get(gomock.Any(), id).Return(nil, transaction.ErrNotFound)
			},
			run: func(q *ledger.Query) error {
				_, err := q.FindTransaction(context.Background(), id)
				return err
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name: "TransactionStoreDown",
			setupMock: func(_ *account.MockRepository, tx *transaction.MockRepository) {
				tx.EXPECT().Get(gomock.Any(), id).Return(nil, errors.New("timeout"))
			},
			run: func(q *ledger.Query) error {
				_, err := q.FindTransaction(context.Background(), id)
				return err
			},
			wantErr: ledger.ErrStorage,
		},
		{
			name: "StatementWithBadCPF",
			run: func(q *ledger.Query) error {
				_, err := q.ListTransactionsByCPF(context.Background(), "123")
				return err
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "StatementFiltersByNormalizedCPF",
			setupMock: func(_ *account.MockRepository, tx *transaction.MockRepository) {
				tx.EXPECT().
					List(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
						if f.CPF == nil || *f.CPF != cpfAna {
							return nil, errors.New("unexpected filter")
						}

						return nil, nil
					})
			},
			run: func(q *ledger.Query) error {
				_, err := q.ListTransactionsByCPF(context.Background(), "957.598.970-80")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			accounts := account.NewMockRepository(ctrl)
			transactions := transaction.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(accounts, transactions)
			}

			err := tt.run(ledger.NewQuery(accounts, transactions))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestQuery_RepeatedReadsAgree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc := f.open(t, cpfAna, 10)

	id, err := f.engine.Deposit(ctx, ledger.MovementParams{CPF: cpfAna, Amount: 1})
	require.NoError(t, err)

	a1, err := f.query.FindAccount(ctx, acc.ID)
	require.NoError(t, err)
	a2, err := f.query.FindAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	t1, err := f.query.FindTransaction(ctx, id)
	require.NoError(t, err)
	t2, err := f.query.FindTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}
