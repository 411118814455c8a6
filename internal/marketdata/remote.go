package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

const defaultRemoteTimeout = 10 * time.Second

// APIError represents a non-2xx response from the data endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data API error %d: %s", e.Status, e.Body)
}

// RemoteClient downloads daily closes from an HTTP endpoint that serves
// one "date,close" CSV document per symbol and year. All requests go
// through a circuit breaker so a flapping endpoint fails fast instead of
// hammering it for every year chunk.
type RemoteClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
}

// NewRemoteClient creates a client for the given base URL. A zero timeout
// falls back to the default.
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	settings := gobreaker.Settings{
		Name:        "marketdata",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	}
	return &RemoteClient{
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		baseURL: baseURL,
	}
}

// FetchDaily downloads closes for symbol covering [start, end], fetching
// the per-year chunks concurrently and merging them into one series.
func (c *RemoteClient) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (*PriceSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	years := end.Year() - start.Year() + 1
	chunks := make([][]Point, years)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < years; i++ {
		i := i
		g.Go(func() error {
			points, err := c.fetchYear(gctx, symbol, start.Year()+i)
			if err != nil {
				return fmt.Errorf("fetching %s %d: %w", symbol, start.Year()+i, err)
			}
			chunks[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var points []Point
	for _, chunk := range chunks {
		for _, p := range chunk {
			if p.Date.Before(start) || p.Date.After(end) {
				continue
			}
			points = append(points, p)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return NewPriceSeries(points)
}

func (c *RemoteClient) fetchYear(ctx context.Context, symbol string, year int) ([]Point, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetchYear(ctx, symbol, year)
	})
	if err != nil {
		return nil, err
	}
	points, ok := res.([]Point)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: type assertion failed")
	}
	return points, nil
}

func (c *RemoteClient) doFetchYear(ctx context.Context, symbol string, year int) ([]Point, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = u.Path + "/daily"
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	return parseCSVPoints(resp.Body)
}
