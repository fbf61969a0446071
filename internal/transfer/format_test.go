package transfer

import (
	"math/big"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"whole", big.NewInt(1000000), 6, "1"},
		{"fraction", big.NewInt(1500000), 6, "1.5"},
		{"sub unit", big.NewInt(500000), 6, "0.5"},
		{"truncated not rounded", big.NewInt(1234567890), 9, "1.234567"},
		{"zero", big.NewInt(0), 18, "0"},
		{"no decimals", big.NewInt(42), 0, "42"},
		{"trailing zeros trimmed", big.NewInt(1230000), 6, "1.23"},
		{"one wei", big.NewInt(1), 18, "0"},
		{"negative", big.NewInt(-1500000), 6, "-1.5"},
		{"nil", nil, 6, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatAmount(tc.amount, tc.decimals); got != tc.want {
				t.Fatalf("FormatAmount(%v, %d) = %q, want %q", tc.amount, tc.decimals, got, tc.want)
			}
		})
	}
}
