package transfer

import (
	"math/big"
	"strings"
)

const maxFractionDigits = 6

var ten = big.NewInt(10)

// FormatAmount renders an integer token amount as a human-readable
// decimal string. The fractional part is truncated (not rounded) to at
// most six digits with trailing zeros trimmed; a zero fraction yields
// the bare integer part.
func FormatAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	value := new(big.Int).Set(amount)
	negative := value.Sign() < 0
	if negative {
		value.Neg(value)
	}

	divisor := new(big.Int).Exp(ten, big.NewInt(int64(decimals)), nil)
	intPart, fracPart := new(big.Int).QuoRem(value, divisor, new(big.Int))

	out := intPart.String()
	if negative {
		out = "-" + out
	}

	if fracPart.Sign() == 0 {
		return out
	}

	frac := fracPart.String()
	if pad := int(decimals) - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")
	if len(frac) > maxFractionDigits {
		frac = strings.TrimRight(frac[:maxFractionDigits], "0")
	}
	if frac == "" {
		return out
	}
	return out + "." + frac
}
