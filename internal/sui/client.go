package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	methodGetCoins   = "suix_getCoins"
	maxResponseBytes = 4 << 20
	retryBaseDelay   = 500 * time.Millisecond
)

// ErrCursorStalled is yielded when the node hands back the cursor it was just given.
var ErrCursorStalled = errors.New("sui rpc returned the same page cursor twice")

// Client reads coin data from a Sui full node over JSON-RPC.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	logger      *zap.Logger
	pageLimit   int
	maxAttempts int
	retryDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithPageLimit sets the page size sent to the node; 0 leaves it to the node.
func WithPageLimit(n int) Option {
	return func(cl *Client) { cl.pageLimit = n }
}

// WithMaxAttempts sets how many times a page request is tried on transport or 5xx failures.
func WithMaxAttempts(n int) Option {
	return func(cl *Client) { cl.maxAttempts = n }
}

func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) { cl.retryDelay = d }
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:    strings.TrimSpace(endpoint),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      zap.NewNop(),
		maxAttempts: 1,
		retryDelay:  retryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// GetCoins fetches a single page of coins of coinType owned by owner.
// A nil cursor requests the first page.
func (c *Client) GetCoins(ctx context.Context, owner Address, coinType string, cursor *string) (*CoinPage, error) {
	var limit any
	if c.pageLimit > 0 {
		limit = c.pageLimit
	}
	var coinTypeParam any
	if coinType != "" {
		coinTypeParam = coinType
	}
	var cursorParam any
	if cursor != nil {
		cursorParam = *cursor
	}

	var page CoinPage
	if err := c.call(ctx, methodGetCoins, []any{owner.String(), coinTypeParam, cursorParam, limit}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Coins returns a lazy sequence over every coin of coinType owned by owner.
// The next page is requested only when the consumer keeps iterating past the
// current one. A failed page, or a cursor that does not advance, is yielded
// as an error and ends the sequence.
func (c *Client) Coins(ctx context.Context, owner Address, coinType string) iter.Seq2[Coin, error] {
	return func(yield func(Coin, error) bool) {
		var cursor *string
		for {
			page, err := c.GetCoins(ctx, owner, coinType, cursor)
			if err != nil {
				yield(Coin{}, err)
				return
			}

			for _, coin := range page.Data {
				if !yield(coin, nil) {
					return
				}
			}

			if !page.HasNextPage || page.NextCursor == nil {
				return
			}
			if cursor != nil && *page.NextCursor == *cursor {
				yield(Coin{}, fmt.Errorf("%s: %w: %q", methodGetCoins, ErrCursorStalled, *cursor))
				return
			}
			cursor = page.NextCursor
		}
	}
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if c.endpoint == "" {
		return errors.New("sui rpc endpoint is required")
	}

	raw, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w (last error: %v)", method, ctx.Err(), lastErr)
			case <-time.After(time.Duration(attempt-1) * c.retryDelay):
			}
		}

		var retryable bool
		retryable, lastErr = c.do(ctx, method, raw, out)
		if lastErr == nil {
			return nil
		}
		if !retryable || ctx.Err() != nil {
			break
		}
		c.logger.Warn("sui rpc attempt failed",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}
	return fmt.Errorf("%s: %w", method, lastErr)
}

// do performs one HTTP round trip and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, method string, body []byte, out any) (bool, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sui rpc request",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("response_time", time.Since(start)),
	)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode >= 500, fmt.Errorf("rpc http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(b, &rpcResp); err != nil {
		return false, fmt.Errorf("invalid JSON response: %w", err)
	}
	if rpcResp.Error != nil {
		return false, rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return false, errors.New("empty result")
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return false, fmt.Errorf("decode result: %w", err)
	}
	return false, nil
}
