package memstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/transaction"
	"github.com/MrJamesThe3rd/conta/internal/transaction/memstore"
)

func TestStore_AppendGetList(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	records := []*transaction.Transaction{
		{ID: uuid.New(), Details: transaction.DepositDetails("95759897080", 50)},
		{ID: uuid.New(), Details: transaction.TransferDetails("27195610020", "95759897080", 20)},
		{ID: uuid.New(), Details: transaction.WithdrawDetails("52601815906", 5)},
	}

	for _, r := range records {
		require.NoError(t, s.Append(ctx, r))
		assert.False(t, r.CreatedAt.IsZero())
	}

	dup := &transaction.Transaction{ID: records[0].ID, Details: transaction.DepositDetails("95759897080", 1)}
	err := s.Append(ctx, dup)
	require.Error(t, err)
	assert.NotErrorIs(t, err, transaction.ErrInvalidDetails)

	got, err := s.Get(ctx, records[1].ID)
	require.NoError(t, err)
	assert.Equal(t, records[1].Details, got.Details)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	all, err := s.List(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, records[0].ID, all[0].ID)

	cpf := "95759897080"
	mine, err := s.List(ctx, transaction.ListFilter{CPF: &cpf})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, records[0].ID, mine[0].ID)
	assert.Equal(t, records[1].ID, mine[1].ID)
}

func TestStore_AppendRejectsInvalidDetails(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	invalid := []transaction.Details{
		transaction.DepositDetails("95759897080", 0),
		transaction.WithdrawDetails("", 5),
		transaction.TransferDetails("27195610020", "", 5),
		{Kind: "refund", Amount: 5, CPF: "95759897080"},
	}

	for _, d := range invalid {
		err := s.Append(ctx, &transaction.Transaction{ID: uuid.New(), Details: d})
		assert.ErrorIs(t, err, transaction.ErrInvalidDetails)
	}

	all, err := s.List(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_ListEmpty(t *testing.T) {
	got, err := memstore.New().List(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
