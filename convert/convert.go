// Package convert applies a resolved exchange rate to a collected batch.
package convert

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aluiziolira/go-price-tracker/models"
)

// Convert multiplies every record's source price by rate, rounding half-up to
// two decimal places, and stamps the whole batch with the single capturedAt
// timestamp so every record in one run reports an identical capture time.
// The batch is updated in place and returned; an empty batch is a no-op.
func Convert(products []*models.Product, rate decimal.Decimal, capturedAt time.Time) []*models.Product {
	for _, p := range products {
		if p == nil {
			continue
		}
		p.PriceTarget = p.PriceSource.Mul(rate).Round(2)
		p.CapturedAt = capturedAt
	}
	return products
}
