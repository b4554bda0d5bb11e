package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatBigInt converts a base-unit amount to a decimal string.
// Example: amount=1234500, decimals=6 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	cut := len(digits) - int(decimals)
	whole, frac := digits[:cut], strings.TrimRight(digits[cut:], "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// ParseUnits converts a decimal string such as "12.5" into base units.
// Fractions longer than decimals are rejected rather than rounded.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(value, "-") {
		return nil, fmt.Errorf("negative amount %q", value)
	}

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", value, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return out, nil
}
