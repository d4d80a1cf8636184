package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/importer"
)

func TestAmountInput_RoundTrips(t *testing.T) {
	for _, cents := range []int64{0, 5, 100, 123456, 100000000} {
		got, err := importer.ParseAmount(amountInput(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got)
	}
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, validCPF("957.598.970-80"))
	assert.Error(t, validCPF("111.111.111-11"))

	assert.NoError(t, validAmount(""))
	assert.Error(t, validAmount("1,234"))

	assert.NoError(t, positiveAmount("0,01"))
	assert.Error(t, positiveAmount("0,00"))
	assert.NoError(t, positiveAmount("1.000.000.000.000,00"))
	assert.Error(t, positiveAmount("1.000.000.000.000,01"))

	assert.Error(t, requiredText("name")("   "))
}
