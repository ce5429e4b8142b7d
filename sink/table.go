package sink

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/aluiziolira/go-price-tracker/models"
	"github.com/aluiziolira/go-price-tracker/rates"
)

// RenderTable prints the converted batch as a fixed-column console table.
// A degraded (fallback) rate is flagged below the table so approximate
// conversions are never silent.
func RenderTable(w io.Writer, products []*models.Product, baseCurrency string, res rates.Resolution) {
	fmt.Fprintf(w, "\nProduct Prices (%s to %s):\n\n", baseCurrency, res.Currency)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Name",
		fmt.Sprintf("Price (%s)", baseCurrency),
		fmt.Sprintf("Price (%s)", res.Currency),
		"Captured At",
	})
	table.SetAutoWrapText(false)

	for _, p := range products {
		if p == nil {
			continue
		}
		table.Append([]string{
			p.Name,
			p.PriceSource.StringFixed(2),
			p.PriceTarget.StringFixed(2),
			p.CapturedAt.Format(TimeLayout),
		})
	}
	table.Render()

	if res.Fallback {
		fmt.Fprintf(w, "WARNING: conversions use the fallback rate %s (%s)\n", res.Rate, res.Reason)
	}
}
