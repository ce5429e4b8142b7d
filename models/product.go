// Package models defines data structures for the price tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one catalogue item flowing through the pipeline. PriceTarget
// and CapturedAt are set by the converter only; the collector leaves them
// zero-valued.
type Product struct {
	Name        string          `csv:"name" json:"name"`
	PriceSource decimal.Decimal `csv:"price_source" json:"price_source"`
	PriceTarget decimal.Decimal `csv:"price_target" json:"price_target"`
	CapturedAt  time.Time       `csv:"captured_at" json:"captured_at"`
}

// Converted reports whether the record has passed through the converter.
func (p *Product) Converted() bool {
	return !p.CapturedAt.IsZero()
}

// RunResult holds the overall outcome of one pipeline run.
type RunResult struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	ItemCount    int
	PageCount    int
	ErrorCount   int
	ErrorsByType map[string]int
	DegradedRate bool
	OutputFile   string
}
