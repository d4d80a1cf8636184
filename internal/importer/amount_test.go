package importer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conta/internal/importer"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		input   string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{input: "1.234,56", want: 123456},
		{input: "R$ 10,00", want: 1000},
		{input: " 7 ", want: 700},
		{input: "0,5", want: 50},
		{input: "", want: 0},
		{input: "1,234", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "92.233.720.368.547.758,07", want: math.MaxInt64},
		{input: "184467440737095516,16", wantErr: true},
		{input: "-92233720368547758,09", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := importer.ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
