// Package mercadopublico implements the client for the Mercado Público
// public tender API. The client owns rate limiting and retry policy; the
// rest of the pipeline only sees normalised records and classified
// fetch outcomes.
package mercadopublico

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

const (
	// DefaultBaseURL is the public tender listing endpoint.
	DefaultBaseURL = "https://api.mercadopublico.cl/servicios/v1/publico/licitaciones.json"

	// DefaultTimeout bounds every HTTP request.
	DefaultTimeout = 15 * time.Second

	// DefaultMinInterval is the minimum spacing between requests; the
	// upstream blocks callers that exceed its capacity limits.
	DefaultMinInterval = 2 * time.Second

	// DefaultMaxAttempts is the detail-fetch attempt budget.
	DefaultMaxAttempts = 4

	// DefaultBaseDelay is the first backoff delay; it doubles per attempt.
	DefaultBaseDelay = 1500 * time.Millisecond

	userAgent = "tenderwatch/1.0"

	// listingDateFormat is the ddmmyyyy form the fecha parameter expects.
	listingDateFormat = "02012006"
)

// Options configures a Client. Zero fields fall back to defaults; only
// Ticket is required.
type Options struct {
	BaseURL     string
	Ticket      string
	MinInterval time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client fetches tender listings and details, self-throttling against the
// upstream API. Safe for use from a single worker; the limiter serialises
// spacing if shared.
type Client struct {
	http        *http.Client
	baseURL     string
	ticket      string
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient builds a client. The access ticket is mandatory: the upstream
// rejects anonymous calls.
func NewClient(opts Options) (*Client, error) {
	if opts.Ticket == "" {
		return nil, fmt.Errorf("%w: api ticket is required", domain.ErrInvalidInput)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		http:        httpClient,
		baseURL:     opts.BaseURL,
		ticket:      opts.Ticket,
		limiter:     rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
	}, nil
}

// DailyListing fetches the day's active tenders. A transport or decode
// failure is logged and yields an empty slice: one missed day is not
// fatal to a range run.
func (c *Client) DailyListing(ctx context.Context, date time.Time) []domain.TenderRecord {
	q := url.Values{}
	q.Set("ticket", c.ticket)
	q.Set("fecha", date.Format(listingDateFormat))
	q.Set("estado", "activas")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	resp, err := c.get(ctx, q)
	if err != nil {
		logger.Errorf("daily listing %s: %v", date.Format("2006-01-02"), err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Errorf("daily listing %s: unexpected status %d", date.Format("2006-01-02"), resp.StatusCode)
		return nil
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Errorf("daily listing %s: decode: %v", date.Format("2006-01-02"), err)
		return nil
	}

	logger.Infof("daily listing %s: %d tenders", date.Format("2006-01-02"), payload.Cantidad)

	records := make([]domain.TenderRecord, 0, len(payload.Listado))
	for _, entry := range payload.Listado {
		records = append(records, ToRecord(entry, false))
	}
	return records
}

// Detail fetches the full record for one tender, retrying transient
// failures with exponential backoff. 404 and other 4xx responses are
// terminal; 5xx and network errors consume the attempt budget.
func (c *Client) Detail(ctx context.Context, code string) (*domain.TenderRecord, domain.FetchStatus) {
	if code == "" {
		return nil, domain.FetchClientError
	}

	q := url.Values{}
	q.Set("ticket", c.ticket)
	q.Set("codigo", code)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.FetchNetworkError
		}

		resp, err := c.get(ctx, q)
		if err != nil {
			if attempt == c.maxAttempts-1 {
				logger.Errorf("detail %s: network failure after %d attempts: %v", code, c.maxAttempts, err)
				return nil, domain.FetchNetworkError
			}
			if !c.sleep(ctx, c.backoff(attempt, false)) {
				return nil, domain.FetchNetworkError
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			rec, status := decodeDetail(resp, code)
			return rec, status

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, domain.FetchNotFound

		case resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == c.maxAttempts-1 {
				logger.Errorf("detail %s: server error %d after %d attempts", code, resp.StatusCode, c.maxAttempts)
				return nil, domain.FetchServerError
			}
			wait := c.backoff(attempt, true)
			logger.Warnf("detail %s: server error %d, retry %d in %s", code, resp.StatusCode, attempt+1, wait)
			if !c.sleep(ctx, wait) {
				return nil, domain.FetchServerError
			}

		default:
			resp.Body.Close()
			logger.Warnf("detail %s: client error %d", code, resp.StatusCode)
			return nil, domain.FetchClientError
		}
	}

	return nil, domain.FetchExhausted
}

func decodeDetail(resp *http.Response, code string) (*domain.TenderRecord, domain.FetchStatus) {
	defer resp.Body.Close()

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Errorf("detail %s: decode: %v", code, err)
		return nil, domain.FetchClientError
	}
	if len(payload.Listado) == 0 {
		return nil, domain.FetchNotFound
	}

	rec := ToRecord(payload.Listado[0], true)
	return &rec, domain.FetchOK
}

func (c *Client) get(ctx context.Context, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = q.Encode()

	return c.http.Do(req)
}

// backoff returns baseDelay doubled per attempt, with a little jitter on
// server errors so simultaneous clients spread out.
func (c *Client) backoff(attempt int, jitter bool) time.Duration {
	d := c.baseDelay << uint(attempt)
	if jitter {
		d += time.Duration(rand.Int63n(int64(time.Second)))
	}
	return d
}

// sleep waits d or until the context is cancelled. Returns false on
// cancellation.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
