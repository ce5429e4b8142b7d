// Package collector fetches paginated catalogue listings and extracts
// product records until a target count is reached.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aluiziolira/go-price-tracker/config"
	"github.com/aluiziolira/go-price-tracker/models"
	"github.com/gocolly/colly/v2"
)

// Collector walks the catalogue page by page. Collection is strictly
// sequential: one request in flight, callbacks run on the calling goroutine,
// so per-run state needs no locking.
type Collector struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	target    int
	products  []*models.Product
	pageItems int
	fetchErr  *FetchError
	parseErr  error

	pageCount    int
	errorCount   int
	errorsByType map[string]int
}

// New builds a collector configured from cfg.
func New(cfg *config.Config) (*Collector, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	cc := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	cc.SetRequestTimeout(cfg.Timeout)
	cc.IgnoreRobotsTxt = true
	cc.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	c := &Collector{
		cfg:          cfg,
		collector:    cc,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}
	c.registerHandlers()
	return c, nil
}

func (c *Collector) registerHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		slog.Debug("fetching listing page", slog.String("url", r.URL.String()))
	})

	c.collector.OnResponse(func(r *colly.Response) {
		c.Metrics.IncPages()
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			c.Metrics.ObserveDuration(time.Since(start))
		}
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		c.fetchErr = classifyFetchError(err, statusCode)
	})

	c.collector.OnHTML("article.product_pod", func(e *colly.HTMLElement) {
		if c.parseErr != nil || len(c.products) >= c.target {
			return
		}

		name := strings.TrimSpace(e.ChildAttr("h3 a", "title"))
		if name == "" {
			name = strings.TrimSpace(e.ChildText("h3 a"))
		}
		priceText := strings.TrimSpace(e.ChildText("p.price_color"))

		price, err := parsePrice(priceText, c.cfg.CurrencySymbol)
		if err != nil {
			c.parseErr = fmt.Errorf("product %q: %w", name, err)
			return
		}
		if name == "" {
			c.parseErr = fmt.Errorf("product with price %q missing title", priceText)
			return
		}

		c.products = append(c.products, &models.Product{
			Name:        name,
			PriceSource: price,
		})
		c.pageItems++
		c.Metrics.IncProducts()
	})
}

// Collect fetches listing pages starting at page 1 until targetCount records
// have been extracted. On a fetch failure it logs, pauses for the configured
// delay, and gives up, returning the partial batch with a nil error; the
// first-page failure case yields an empty batch. A page with zero entries
// also terminates collection, so an exhausted catalogue cannot loop forever.
// Malformed price text aborts the run with a non-nil error.
func (c *Collector) Collect(ctx context.Context, targetCount int) ([]*models.Product, error) {
	c.target = targetCount
	c.products = make([]*models.Product, 0, targetCount)
	c.parseErr = nil
	c.pageCount = 0
	c.errorCount = 0
	c.errorsByType = make(map[string]int)

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			slog.Warn("collection cancelled", slog.Int("page", page))
			break
		}

		c.pageItems = 0
		c.fetchErr = nil

		pageURL := c.pageURL(page)
		visitErr := c.collector.Visit(pageURL)
		if c.parseErr != nil {
			return nil, fmt.Errorf("page %d: %w", page, c.parseErr)
		}
		if c.fetchErr == nil && visitErr != nil {
			c.fetchErr = classifyFetchError(visitErr, 0)
		}

		if c.fetchErr != nil {
			c.errorCount++
			c.errorsByType[c.fetchErr.Category]++
			c.Metrics.IncFetchError(c.fetchErr.Category)
			slog.Error("listing page fetch failed, giving up",
				slog.String("url", pageURL),
				slog.String("category", c.fetchErr.Category),
				slog.Any("error", c.fetchErr.Err),
			)
			c.pause(ctx)
			break
		}

		c.pageCount++

		if len(c.products) >= targetCount {
			c.products = c.products[:targetCount]
			break
		}
		if c.pageItems == 0 {
			slog.Warn("listing page yielded no products, stopping", slog.String("url", pageURL))
			break
		}
	}

	return c.products, nil
}

func (c *Collector) pageURL(page int) string {
	return fmt.Sprintf("%s/catalogue/page-%d.html", strings.TrimSuffix(c.cfg.BaseURL, "/"), page)
}

func (c *Collector) pause(ctx context.Context) {
	if c.cfg.FailureDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.FailureDelay):
	}
}

// PageCount reports how many pages were fetched successfully in the last run.
func (c *Collector) PageCount() int {
	return c.pageCount
}

// ErrorCount reports how many fetch errors occurred in the last run.
func (c *Collector) ErrorCount() int {
	return c.errorCount
}

// ErrorsByType reports fetch errors by category for the last run.
func (c *Collector) ErrorsByType() map[string]int {
	out := make(map[string]int, len(c.errorsByType))
	for k, v := range c.errorsByType {
		out[k] = v
	}
	return out
}
