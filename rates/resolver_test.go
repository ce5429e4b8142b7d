package rates

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"

	"github.com/aluiziolira/go-price-tracker/config"
)

func newTestResolver(t *testing.T) (*Resolver, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.RateAPIURL = "http://rates.test/v4/latest/GBP"
	cfg.FallbackRate = 180.0

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	transport := httpmock.NewMockTransport()
	r.client.Transport = transport
	return r, transport
}

func TestResolveCaseInsensitiveLookup(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", "http://rates.test/v4/latest/GBP",
		httpmock.NewStringResponder(200, `{"rates": {"USD": 1.27, "KES": 150.0}}`))

	res := r.Resolve(context.Background(), "usd")
	if res.Fallback {
		t.Fatalf("expected live resolution, got fallback (%s)", res.Reason)
	}
	if res.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", res.Currency)
	}
	if want := decimal.NewFromFloat(1.27); !res.Rate.Equal(want) {
		t.Fatalf("rate = %s, want %s", res.Rate, want)
	}
}

func TestResolveMissingCurrencyFallsBack(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", "http://rates.test/v4/latest/GBP",
		httpmock.NewStringResponder(200, `{"rates": {"USD": 1.27}}`))

	res := r.Resolve(context.Background(), "KES")
	if !res.Fallback {
		t.Fatalf("expected fallback for missing currency")
	}
	if want := decimal.NewFromFloat(180.0); !res.Rate.Equal(want) {
		t.Fatalf("fallback rate = %s, want %s", res.Rate, want)
	}
	if res.Reason == "" {
		t.Fatalf("fallback must carry a reason")
	}
}

func TestResolveTransportErrorFallsBack(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", "http://rates.test/v4/latest/GBP",
		httpmock.NewErrorResponder(http.ErrHandlerTimeout))

	res := r.Resolve(context.Background(), "KES")
	if !res.Fallback {
		t.Fatalf("expected fallback on transport error")
	}
	if want := decimal.NewFromFloat(180.0); !res.Rate.Equal(want) {
		t.Fatalf("fallback rate = %s, want %s", res.Rate, want)
	}
}

func TestResolveBadResponsesFallBack(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{name: "server error", responder: httpmock.NewStringResponder(500, "boom")},
		{name: "malformed json", responder: httpmock.NewStringResponder(200, "not json")},
		{name: "empty table", responder: httpmock.NewStringResponder(200, `{"rates": {}}`)},
		{name: "non-positive rate", responder: httpmock.NewStringResponder(200, `{"rates": {"KES": 0}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, transport := newTestResolver(t)
			transport.RegisterResponder("GET", "http://rates.test/v4/latest/GBP", tt.responder)

			res := r.Resolve(context.Background(), "KES")
			if !res.Fallback {
				t.Fatalf("expected fallback")
			}
		})
	}
}

func TestResolveMemoizesWithinRun(t *testing.T) {
	r, transport := newTestResolver(t)
	calls := 0
	transport.RegisterResponder("GET", "http://rates.test/v4/latest/GBP",
		func(req *http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(200, `{"rates": {"KES": 150.0}}`), nil
		})

	first := r.Resolve(context.Background(), "KES")
	second := r.Resolve(context.Background(), "kes")

	if calls != 1 {
		t.Fatalf("rate service called %d times, want 1", calls)
	}
	if !first.Rate.Equal(second.Rate) || first.Fallback != second.Fallback {
		t.Fatalf("memoized resolution differs: %v vs %v", first, second)
	}
}
