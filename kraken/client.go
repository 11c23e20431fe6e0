package kraken

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is Kraken's REST endpoint
	DefaultBaseURL = "https://api.kraken.com"
	// DefaultPageDelay keeps trade history paging under the private call limit
	DefaultPageDelay = 3 * time.Second

	TradesHistoryPath = "/0/private/TradesHistory"
	TickerPath        = "/0/public/Ticker"
)

// ErrMissingCredentials is returned by private calls when no key/secret
// was configured.
var ErrMissingCredentials = errors.New("kraken: api key and secret are required")

// APIError carries the messages from a non-empty "error" array.
type APIError struct {
	Endpoint string
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kraken %s: %s", e.Endpoint, strings.Join(e.Messages, "; "))
}

// Config holds everything the client needs. Credentials are passed in
// explicitly; the client never reads the environment.
type Config struct {
	APIKey    string
	APISecret string // base64, as issued by Kraken
	BaseURL   string
	Timeout   time.Duration
	PageDelay time.Duration
}

// Client talks to Kraken's REST API. It implements
// ledger.TradeHistorySource and pnl.MarketPriceSource.
type Client struct {
	baseURL    string
	apiKey     string
	secret     []byte
	httpClient *http.Client
	limiter    *rate.Limiter

	nonceMu   sync.Mutex
	lastNonce int64
	now       func() time.Time
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var secret []byte
	if cfg.APISecret != "" {
		s, err := base64.StdEncoding.DecodeString(cfg.APISecret)
		if err != nil {
			return nil, fmt.Errorf("api secret is not valid base64: %w", err)
		}
		secret = s
	}

	limit := rate.Inf
	if cfg.PageDelay > 0 {
		limit = rate.Every(cfg.PageDelay)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}, nil
}

// Sign computes the API-Sign header:
// base64(HMAC-SHA512(secret, path + SHA256(nonce + body))).
func Sign(path, nonce string, body, secret []byte) string {
	sum := sha256.Sum256(append([]byte(nonce), body...))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sum[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// nonce is strictly increasing milliseconds.
func (c *Client) nonce() string {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	n := c.now().UnixMilli()
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return strconv.FormatInt(n, 10)
}

type tradesHistoryResponse struct {
	Error  []string `json:"error"`
	Result struct {
		Trades ledger.Batch `json:"trades"`
		Count  int          `json:"count"`
	} `json:"result"`
}

// FetchBatch returns one page of trades at or before before (the newest
// page when before is nil). Kraken's end bound is inclusive, so the page
// repeats the boundary trade. Calls are spaced by the configured page delay.
func (c *Client) FetchBatch(ctx context.Context, before *decimal.Decimal) (ledger.Batch, error) {
	if c.apiKey == "" || len(c.secret) == 0 {
		return nil, ErrMissingCredentials
	}

	nonce := c.nonce()
	payload := map[string]any{
		"nonce":             nonce,
		"type":              "all",
		"trades":            true,
		"consolidate_taker": true,
	}
	if before != nil {
		payload["end"] = before.String()
	}

	var resp tradesHistoryResponse
	if err := c.private(ctx, TradesHistoryPath, nonce, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Error) > 0 {
		return nil, &APIError{Endpoint: TradesHistoryPath, Messages: resp.Error}
	}
	if resp.Result.Trades == nil {
		return ledger.Batch{}, nil
	}
	return resp.Result.Trades, nil
}

func (c *Client) private(ctx context.Context, path, nonce string, payload any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("API-Sign", Sign(path, nonce, body, c.secret))

	data, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FetchPrices returns the last trade price for each pair Kraken knows.
// Pairs missing from the response are simply absent from the map.
func (c *Client) FetchPrices(ctx context.Context, pairs []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	if len(pairs) == 0 {
		return prices, nil
	}

	params := url.Values{}
	params.Set("pair", strings.Join(pairs, ","))
	apiURL := fmt.Sprintf("%s%s?%s", c.baseURL, TickerPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode response: invalid json")
	}

	doc := gjson.ParseBytes(data)
	if msgs := doc.Get("error").Array(); len(msgs) > 0 {
		e := &APIError{Endpoint: TickerPath}
		for _, m := range msgs {
			e.Messages = append(e.Messages, m.String())
		}
		return nil, e
	}

	// "c" is [last trade price, lot volume]
	doc.Get("result").ForEach(func(pair, ticker gjson.Result) bool {
		last, err := decimal.NewFromString(ticker.Get("c.0").String())
		if err == nil && last.IsPositive() {
			prices[pair.String()] = last
		}
		return true
	})
	return prices, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(data))
	}
	return data, nil
}
