// Package rates resolves currency conversion factors from a live
// exchange-rate service, with a hardcoded fallback when the lookup fails.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/aluiziolira/go-price-tracker/config"
)

// Resolution is the tagged outcome of a rate lookup. Fallback marks a
// degraded result so downstream output can flag approximate conversions
// instead of silently mixing them with live rates.
type Resolution struct {
	Currency string
	Rate     decimal.Decimal
	Fallback bool
	Reason   string
}

// Table maps upper-cased currency codes to factors relative to the base
// currency. It lives for one run only and is never persisted.
type Table map[string]decimal.Decimal

// Resolver performs the one-shot rate-service call.
type Resolver struct {
	apiURL   string
	client   *http.Client
	fallback decimal.Decimal

	// memo keeps resolutions for the lifetime of the process so repeated
	// lookups within one run hit the network at most once per code.
	memo *lru.Cache[string, Resolution]
}

// NewResolver builds a resolver configured from cfg.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	memo, err := lru.New[string, Resolution](16)
	if err != nil {
		return nil, fmt.Errorf("init rate memo: %w", err)
	}
	return &Resolver{
		apiURL:   cfg.RateAPIURL,
		client:   &http.Client{Timeout: cfg.Timeout},
		fallback: decimal.NewFromFloat(cfg.FallbackRate),
		memo:     memo,
	}, nil
}

// Resolve fetches the full rate table and looks up target (case-insensitive).
// Every failure mode degrades to the fallback rate with a warning log; the
// pipeline always receives a usable Resolution.
func (r *Resolver) Resolve(ctx context.Context, target string) Resolution {
	code := config.NormalizeCurrency(target)
	if cached, ok := r.memo.Get(code); ok {
		return cached
	}

	res := r.resolve(ctx, code)
	if res.Fallback {
		slog.Warn("rate lookup degraded to fallback",
			slog.String("currency", res.Currency),
			slog.String("reason", res.Reason),
			slog.String("rate", res.Rate.String()),
		)
	}
	r.memo.Add(code, res)
	return res
}

func (r *Resolver) resolve(ctx context.Context, code string) Resolution {
	table, err := r.fetchTable(ctx)
	if err != nil {
		return r.fallbackResolution(code, err.Error())
	}

	rate, ok := table[code]
	if !ok {
		return r.fallbackResolution(code, fmt.Sprintf("currency %s not in rate table", code))
	}
	if !rate.IsPositive() {
		return r.fallbackResolution(code, fmt.Sprintf("non-positive rate %s for %s", rate, code))
	}
	return Resolution{Currency: code, Rate: rate}
}

func (r *Resolver) fallbackResolution(code, reason string) Resolution {
	return Resolution{
		Currency: code,
		Rate:     r.fallback,
		Fallback: true,
		Reason:   reason,
	}
}

func (r *Resolver) fetchTable(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rate table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rate table is empty")
	}

	table := make(Table, len(payload.Rates))
	for code, factor := range payload.Rates {
		table[strings.ToUpper(strings.TrimSpace(code))] = decimal.NewFromFloat(factor)
	}
	return table, nil
}
