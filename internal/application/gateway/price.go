package gateway

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

var weiPerEther = decimal.New(1, etherDecimals)

// ParseEther converts a decimal ether amount such as "1.5" to wei.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("price %q is negative", s)
	}
	wei := d.Mul(weiPerEther)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("price %q has more than %d decimals", s, etherDecimals)
	}
	return wei.BigInt(), nil
}

// FormatEther renders wei as a decimal ether amount without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}
