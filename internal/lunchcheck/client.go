package lunchcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"lunchcheck_bot/internal/logger"
)

// Sentinel errors classifying a failed fetch. Callers check with errors.Is.
var (
	// ErrSourceUnavailable means the saldo endpoint could not be reached or
	// answered with a non-200 status.
	ErrSourceUnavailable = errors.New("saldo source unavailable")
	// ErrParse means the response body did not contain the expected balance
	// and status tokens.
	ErrParse = errors.New("unexpected saldo response format")
)

// The saldo page renders the balance as "Kontostand ... <x.xx> CHF" and the
// card status as a bold token after "Kartenstatus". Only the exact token
// "aktiv" counts as active; any other wording means inactive.
var statusRegex = regexp.MustCompile(`(?s)Kontostand.*?([0-9]+\.[0-9]{2}) CHF.*?Kartenstatus.*?<b>(.*?)</b>`)

const activeToken = "aktiv"

// Status is the observed state of a card at the balance source.
type Status struct {
	Saldo  decimal.Decimal
	Active bool
}

// Client fetches card balances from the Lunch Check saldo endpoint. It is
// stateless and safe for concurrent use. No retries at this layer; the
// caller decides whether and when to try again.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes client behavior.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient returns a client for the given saldo endpoint. The card number
// is appended directly to baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the current balance and active status for cardNumber.
// Errors wrap ErrSourceUnavailable (transport/HTTP) or ErrParse (body shape).
func (c *Client) Fetch(ctx context.Context, cardNumber string) (Status, error) {
	url := c.baseURL + cardNumber

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{}, fmt.Errorf("%w: failed to create request: %v", ErrSourceUnavailable, err)
	}

	logger.L().Debugf("Fetching saldo: card=%s", cardNumber)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, fmt.Errorf("%w: failed to read response body: %v", ErrSourceUnavailable, err)
	}

	return parseStatus(body)
}

func parseStatus(body []byte) (Status, error) {
	m := statusRegex.FindSubmatch(body)
	if m == nil {
		return Status{}, fmt.Errorf("%w: no balance/status match in %d bytes", ErrParse, len(body))
	}

	saldo, err := decimal.NewFromString(string(m[1]))
	if err != nil {
		return Status{}, fmt.Errorf("%w: bad balance %q: %v", ErrParse, m[1], err)
	}

	return Status{
		Saldo:  saldo,
		Active: string(m[2]) == activeToken,
	}, nil
}
