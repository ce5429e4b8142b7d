package collector

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parsePrice strips the currency symbol prefix from a listing price and
// parses the remainder as a decimal amount. The target site serves the pound
// sign double-encoded ("Â£"), so the stray byte is removed first.
func parsePrice(text, symbol string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "Â", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty price text")
	}
	if !strings.HasPrefix(cleaned, symbol) {
		return decimal.Zero, fmt.Errorf("price %q missing currency symbol %q", text, symbol)
	}

	amount := strings.TrimSpace(strings.TrimPrefix(cleaned, symbol))
	price, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price amount %q: %w", amount, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", text)
	}
	return price, nil
}
