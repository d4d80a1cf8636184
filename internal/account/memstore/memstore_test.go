package memstore_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/account/memstore"
)

func seed(t *testing.T, s *memstore.Store, cpf string, balance int64) *account.Account {
	t.Helper()

	acc := &account.Account{FullName: "Titular", Type: account.TypeCorrente, CPF: cpf, Balance: balance}
	require.NoError(t, s.Create(context.Background(), acc))

	return acc
}

func TestStore_CreateAndLookup(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	acc := seed(t, s, "95759897080", 10)
	assert.NotEqual(t, uuid.Nil, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())

	byID, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc, byID)

	byCPF, err := s.GetByCPF(ctx, "95759897080")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byCPF.ID)

	err = s.Create(ctx, &account.Account{CPF: "95759897080"})
	assert.ErrorIs(t, err, account.ErrDuplicateCPF)

	_, err = s.GetByCPF(ctx, "27195610020")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	acc := seed(t, s, "95759897080", 10)

	got, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)

	got.Balance = 1_000_000

	again, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Balance)
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	s := memstore.New()

	first := seed(t, s, "95759897080", 1)
	second := seed(t, s, "27195610020", 2)
	third := seed(t, s, "52601815906", 3)

	accs, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accs, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID}, []uuid.UUID{accs[0].ID, accs[1].ID, accs[2].ID})
}

func TestStore_ApplyBalanceDelta(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	acc := seed(t, s, "95759897080", 40)

	_, err := s.ApplyBalanceDelta(ctx, acc.ID, -50)
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	got, err := s.ApplyBalanceDelta(ctx, acc.ID, -40)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)

	_, err = s.ApplyBalanceDelta(ctx, uuid.New(), 5)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestStore_ApplyBalanceDeltasIsAllOrNothing(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	a := seed(t, s, "95759897080", 10)
	b := seed(t, s, "27195610020", 10)

	_, err := s.ApplyBalanceDeltas(ctx, []account.Delta{
		{AccountID: b.ID, Amount: 20},
		{AccountID: a.ID, Amount: -20},
	})
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		acc, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(10), acc.Balance)
	}

	accs, err := s.ApplyBalanceDeltas(ctx, []account.Delta{
		{AccountID: a.ID, Amount: -10},
		{AccountID: b.ID, Amount: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), accs[0].Balance)
	assert.Equal(t, int64(20), accs[1].Balance)
}

func TestStore_CreditOverflowIsRefused(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	rich := seed(t, s, "95759897080", math.MaxInt64-5)
	poor := seed(t, s, "27195610020", 50)

	_, err := s.ApplyBalanceDelta(ctx, rich.ID, 10)
	require.ErrorIs(t, err, account.ErrBalanceOverflow)
	assert.NotErrorIs(t, err, account.ErrInsufficientFunds)

	_, err = s.ApplyBalanceDeltas(ctx, []account.Delta{
		{AccountID: poor.ID, Amount: -10},
		{AccountID: rich.ID, Amount: 10},
	})
	require.ErrorIs(t, err, account.ErrBalanceOverflow)

	got, err := s.GetByID(ctx, rich.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-5), got.Balance)

	got, err = s.GetByID(ctx, poor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Balance)
}

func TestStore_UpdateMovesCPFIndex(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	acc := seed(t, s, "95759897080", 10)
	other := seed(t, s, "27195610020", 10)

	acc.CPF = other.CPF
	assert.ErrorIs(t, s.Update(ctx, acc), account.ErrDuplicateCPF)

	acc.CPF = "52601815906"
	require.NoError(t, s.Update(ctx, acc))

	_, err := s.GetByCPF(ctx, "95759897080")
	assert.ErrorIs(t, err, account.ErrNotFound)

	got, err := s.GetByCPF(ctx, "52601815906")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
}

func TestStore_ConcurrentDeltas(t *testing.T) {
	s := memstore.New()
	acc := seed(t, s, "95759897080", 0)

	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.ApplyBalanceDelta(context.Background(), acc.ID, 3)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	got, err := s.GetByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.Balance)
}
