// Package sink persists a converted batch to CSV, renders it as a console
// table, and optionally produces a comparison chart.
package sink

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-price-tracker/config"
	"github.com/aluiziolira/go-price-tracker/models"
	"github.com/aluiziolira/go-price-tracker/rates"
)

// Emit runs the three sink responsibilities in sequence over one batch:
// persist to CSV, display the table, and (when opted in) write the chart.
// An unwritable output path fails the run; the chart is rendered last so a
// chart failure cannot lose persisted data.
func Emit(products []*models.Product, res rates.Resolution, cfg *config.Config) error {
	writer, err := NewCSVWriter(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := writer.Write(products); err != nil {
		writer.Close()
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return fmt.Errorf("validate output: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	slog.Info("batch persisted", slog.String("file", cfg.OutputFile), slog.Int("records", len(products)))

	RenderTable(os.Stdout, products, cfg.BaseCurrency, res)

	if cfg.Chart {
		if err := WriteChart(cfg.ChartFile, products, cfg.BaseCurrency, res.Currency); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		slog.Info("chart written", slog.String("file", cfg.ChartFile))
	}
	return nil
}
