package account_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

func TestAddBalance(t *testing.T) {
	type testCase struct {
		name    string
		balance int64
		delta   int64
		want    int64
		wantErr error
	}

	tests := []testCase{
		{name: "Credit", balance: 10, delta: 5, want: 15},
		{name: "DebitToZero", balance: 10, delta: -10, want: 0},
		{name: "Overdraw", balance: 10, delta: -11, wantErr: account.ErrInsufficientFunds},
		{name: "CreditToMax", balance: math.MaxInt64 - 5, delta: 5, want: math.MaxInt64},
		{name: "CreditPastMax", balance: math.MaxInt64 - 5, delta: 6, wantErr: account.ErrBalanceOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := account.AddBalance(tt.balance, tt.delta)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
