package collector

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-price-tracker/config"
)

func newTestCollector(t *testing.T) (*Collector, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://example.test"
	cfg.FailureDelay = 0

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	transport := httpmock.NewMockTransport()
	c.collector.WithTransport(transport)
	return c, transport
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

func buildListingPage(page, items int) string {
	var builder strings.Builder
	builder.WriteString("<html><body><section class=\"products\">")
	for i := 1; i <= items; i++ {
		id := (page-1)*items + i
		fmt.Fprintf(&builder, "<article class=\"product_pod\">")
		fmt.Fprintf(&builder, "<h3><a href=\"catalogue/book-%d/index.html\" title=\"Book %d\">Book %d</a></h3>", id, id, id)
		fmt.Fprintf(&builder, "<p class=\"price_color\">&pound;%0.2f</p>", float64(id))
		builder.WriteString("</article>")
	}
	builder.WriteString("</section></body></html>")
	return builder.String()
}

func TestCollectExactTargetCount(t *testing.T) {
	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html", htmlResponder(buildListingPage(1, 20)))

	products, err := c.Collect(context.Background(), 10)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(products) != 10 {
		t.Fatalf("products=%d, want 10", len(products))
	}
	for _, p := range products {
		if p.Name == "" {
			t.Fatalf("product has empty name")
		}
		if p.PriceSource.IsNegative() {
			t.Fatalf("product %q has negative price %s", p.Name, p.PriceSource)
		}
		if p.Converted() {
			t.Fatalf("collector must not set conversion fields, got %v", p)
		}
	}
	if got := c.PageCount(); got != 1 {
		t.Fatalf("pages=%d, want 1", got)
	}
}

func TestCollectSpansPages(t *testing.T) {
	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html", htmlResponder(buildListingPage(1, 20)))
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-2.html", htmlResponder(buildListingPage(2, 20)))

	products, err := c.Collect(context.Background(), 30)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(products) != 30 {
		t.Fatalf("products=%d, want 30", len(products))
	}
	if products[0].Name != "Book 1" {
		t.Fatalf("first product = %q, want Book 1 (document order)", products[0].Name)
	}
	if products[29].Name != "Book 30" {
		t.Fatalf("last product = %q, want Book 30", products[29].Name)
	}
	if got := c.PageCount(); got != 2 {
		t.Fatalf("pages=%d, want 2", got)
	}
}

func TestCollectFirstPageFailureReturnsEmpty(t *testing.T) {
	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html",
		httpmock.NewStringResponder(500, "server error"))

	products, err := c.Collect(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch failure must not fail the run: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("products=%d, want 0", len(products))
	}
	if got := c.ErrorCount(); got != 1 {
		t.Fatalf("errors=%d, want 1", got)
	}
}

func TestCollectStopsAfterMidRunFailure(t *testing.T) {
	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html", htmlResponder(buildListingPage(1, 20)))
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-2.html",
		httpmock.NewStringResponder(404, "not found"))

	products, err := c.Collect(context.Background(), 50)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(products) != 20 {
		t.Fatalf("products=%d, want partial batch of 20", len(products))
	}
	if got := c.ErrorsByType()[CategoryNotFound]; got != 1 {
		t.Fatalf("not_found errors=%d, want 1 (got %v)", got, c.ErrorsByType())
	}
}

func TestCollectStopsOnEmptyPage(t *testing.T) {
	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html",
		htmlResponder("<html><body><section class=\"products\"></section></body></html>"))

	products, err := c.Collect(context.Background(), 10)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("products=%d, want 0", len(products))
	}
	if got := c.ErrorCount(); got != 0 {
		t.Fatalf("empty page is not an error, got %d errors", got)
	}
}

func TestCollectMalformedPriceIsFatal(t *testing.T) {
	page := "<html><body>" +
		"<article class=\"product_pod\">" +
		"<h3><a href=\"catalogue/book-1/index.html\" title=\"Book 1\">Book 1</a></h3>" +
		"<p class=\"price_color\">&pound;fifty</p>" +
		"</article>" +
		"</body></html>"

	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html", htmlResponder(page))

	if _, err := c.Collect(context.Background(), 10); err == nil {
		t.Fatalf("malformed price amount should abort the run")
	}
}

func TestCollectMissingSymbolIsFatal(t *testing.T) {
	page := "<html><body>" +
		"<article class=\"product_pod\">" +
		"<h3><a href=\"catalogue/book-1/index.html\" title=\"Book 1\">Book 1</a></h3>" +
		"<p class=\"price_color\">51.77</p>" +
		"</article>" +
		"</body></html>"

	c, transport := newTestCollector(t)
	transport.RegisterResponder("GET", "http://example.test/catalogue/page-1.html", htmlResponder(page))

	_, err := c.Collect(context.Background(), 10)
	if err == nil || !strings.Contains(err.Error(), "missing currency symbol") {
		t.Fatalf("expected missing-symbol error, got %v", err)
	}
}
