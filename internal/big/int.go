package big

import (
	"fmt"
	"math/big"
)

const (
	base10 = 10
)

// IsDecimalString reports whether s is a non-empty run of ASCII digits.
// Signs, separators and whitespace are not allowed.
func IsDecimalString(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// BigIntFromDecimalString converts a string of ASCII digits to a non-negative *big.Int.
func BigIntFromDecimalString(s string) (*big.Int, error) {
	if !IsDecimalString(s) {
		return nil, fmt.Errorf("invalid decimal digit string: %q", s)
	}

	bigInt, isValid := new(big.Int).SetString(s, base10)
	if !isValid {
		return nil, fmt.Errorf("invalid decimal digit string: %q", s)
	}

	return bigInt, nil
}
