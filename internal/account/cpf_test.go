package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

func TestValidCPF(t *testing.T) {
	tests := []struct {
		cpf  string
		want bool
	}{
		{cpf: "95759897080", want: true},
		{cpf: "27195610020", want: true},
		{cpf: "52601815906", want: true},
		{cpf: "95759897081", want: false},
		{cpf: "95759897090", want: false},
		{cpf: "11111111111", want: false},
		{cpf: "9575989708", want: false},
		{cpf: "957598970800", want: false},
		{cpf: "957.598.970-80", want: false},
		{cpf: "9575989708a", want: false},
		{cpf: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.cpf, func(t *testing.T) {
			assert.Equal(t, tt.want, account.ValidCPF(tt.cpf))
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "95759897080", account.NormalizeCPF("957.598.970-80"))
	assert.Equal(t, "95759897080", account.NormalizeCPF(" 957 598 970 80 "))
	assert.True(t, account.ValidCPF(account.NormalizeCPF("271.956.100-20")))
}

func TestTypeValid(t *testing.T) {
	assert.True(t, account.TypeCorrente.Valid())
	assert.True(t, account.TypePoupanca.Valid())
	assert.False(t, account.Type("poupanca").Valid())
	assert.False(t, account.Type("").Valid())
}
