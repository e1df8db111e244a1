package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily closes from the Yahoo Finance chart API
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// NewYahooProvider creates a Yahoo provider with the given request timeout
func NewYahooProvider(timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultYahooBaseURL,
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// Fetch retrieves up to periods daily closes per symbol. Symbols that fail
// are logged, counted, and omitted from the batch; the fetch fails as a
// whole only when every symbol fails.
func (p *YahooProvider) Fetch(ctx context.Context, symbols []string, periods int) (*Batch, error) {
	batch := &Batch{
		FetchedAt: time.Now(),
		Series:    make(map[string][]models.PricePoint, len(symbols)),
	}

	var lastErr error
	for _, sym := range symbols {
		points, err := p.fetchSymbol(ctx, sym, periods)
		if err != nil {
			logger.Warn("Symbol fetch failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", sym),
				logger.ErrorField(err),
			)
			logger.FetchErrorsTotal.WithLabelValues(p.Name()).Inc()
			lastErr = err
			continue
		}
		batch.Series[sym] = points
	}

	if len(batch.Series) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all %d symbols failed: %w", len(symbols), lastErr)
	}
	return batch, nil
}

// yahooChart mirrors the chart API response. Close values arrive as a
// mixed array where market holidays are nulls, hence interface{}.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) fetchSymbol(ctx context.Context, symbol string, periods int) ([]models.PricePoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		p.baseURL, url.PathEscape(symbol), rangeForPeriods(periods))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		c := toFloat(closes[i])
		if c == 0 {
			continue // null bar, market holiday
		}
		points = append(points, models.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     c,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	if len(points) > periods {
		points = points[len(points)-periods:]
	}
	return points, nil
}

// rangeForPeriods maps a trading-day count onto the chart API range values
func rangeForPeriods(periods int) string {
	switch {
	case periods <= 30:
		return "1mo"
	case periods <= 90:
		return "3mo"
	case periods <= 180:
		return "6mo"
	case periods <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
