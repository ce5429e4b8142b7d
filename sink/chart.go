package sink

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aluiziolira/go-price-tracker/models"
)

// WriteChart renders a grouped bar chart, one bar pair per record, to an
// HTML file the user opens in a browser. X-axis labels are rotated so long
// product names stay readable.
func WriteChart(path string, products []*models.Product, baseCurrency, targetCurrency string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	names := make([]string, 0, len(products))
	source := make([]opts.BarData, 0, len(products))
	target := make([]opts.BarData, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		names = append(names, p.Name)
		source = append(source, opts.BarData{Value: p.PriceSource.InexactFloat64()})
		target = append(target, opts.BarData{Value: p.PriceTarget.InexactFloat64()})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Product Prices in %s vs %s", baseCurrency, targetCurrency),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Show:     opts.Bool(true),
				Rotate:   90,
				Interval: "0",
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries(baseCurrency, source).
		AddSeries(targetCurrency, target)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
