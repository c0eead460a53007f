package sui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "0xaaefb759f59e15131cfdb31628347b0567f21ee146c3656bc6af913b340ff6ad"

// fakeNode serves suix_getCoins from pages; the cursor of page i is its index as a string.
func fakeNode(t *testing.T, pages [][]uint64, requests *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, methodGetCoins, req.Method)
		if !assert.Len(t, req.Params, 4) {
			return
		}
		assert.Equal(t, testOwner, req.Params[0])
		assert.Equal(t, "0x2::sui::SUI", req.Params[1])

		idx := 0
		if cursor, ok := req.Params[2].(string); ok {
			idx, _ = strconv.Atoi(cursor)
		}

		data := []map[string]any{}
		for i, balance := range pages[idx] {
			data = append(data, map[string]any{
				"coinType":     "0x2::sui::SUI",
				"coinObjectId": "0x" + strconv.Itoa(idx) + strconv.Itoa(i),
				"version":      "1",
				"digest":       "digest",
				"balance":      strconv.FormatUint(balance, 10),
			})
		}
		result := map[string]any{"data": data, "hasNextPage": idx+1 < len(pages), "nextCursor": nil}
		if idx+1 < len(pages) {
			result["nextCursor"] = strconv.Itoa(idx + 1)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
}

func mustAddress(t *testing.T) Address {
	t.Helper()
	addr, err := ParseAddress(testOwner)
	require.NoError(t, err)
	return addr
}

func TestClient_GetCoins(t *testing.T) {
	var requests atomic.Int32
	srv := fakeNode(t, [][]uint64{{1, 2}, {3}}, &requests)
	defer srv.Close()

	c := NewClient(srv.URL, WithHTTPClient(srv.Client()))

	page, err := c.GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.True(t, page.HasNextPage)
	require.NotNil(t, page.NextCursor)
	require.Equal(t, "1", *page.NextCursor)
	require.Equal(t, uint64(2), page.Data[1].Balance)
	require.Equal(t, "0x2::sui::SUI", page.Data[0].CoinType)

	page, err = c.GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.False(t, page.HasNextPage)
	require.Nil(t, page.NextCursor)
}

func TestClient_Coins(t *testing.T) {
	t.Run("walks every page", func(t *testing.T) {
		var requests atomic.Int32
		srv := fakeNode(t, [][]uint64{{1, 2}, {3}, {4, 5}}, &requests)
		defer srv.Close()

		var got []uint64
		for coin, err := range NewClient(srv.URL).Coins(context.Background(), mustAddress(t), "0x2::sui::SUI") {
			require.NoError(t, err)
			got = append(got, coin.Balance)
		}

		require.Equal(t, []uint64{1, 2, 3, 4, 5}, got)
		require.Equal(t, int32(3), requests.Load())
	})

	t.Run("stops fetching when the consumer stops", func(t *testing.T) {
		var requests atomic.Int32
		srv := fakeNode(t, [][]uint64{{1, 2}, {3}, {4}}, &requests)
		defer srv.Close()

		for coin, err := range NewClient(srv.URL).Coins(context.Background(), mustAddress(t), "0x2::sui::SUI") {
			require.NoError(t, err)
			if coin.Balance == 2 {
				break
			}
		}

		require.Equal(t, int32(1), requests.Load())
	})

	t.Run("empty result", func(t *testing.T) {
		var requests atomic.Int32
		srv := fakeNode(t, [][]uint64{{}}, &requests)
		defer srv.Close()

		n := 0
		for _, err := range NewClient(srv.URL).Coins(context.Background(), mustAddress(t), "0x2::sui::SUI") {
			require.NoError(t, err)
			n++
		}
		require.Zero(t, n)
	})

	t.Run("repeated cursor ends the sequence", func(t *testing.T) {
		// Given: a node that always claims another page behind the same cursor
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"data":[],"nextCursor":"0xsame","hasNextPage":true}}`))
		}))
		defer srv.Close()

		// When: draining the sequence
		var errs []error
		for _, err := range NewClient(srv.URL).Coins(context.Background(), mustAddress(t), "0x2::sui::SUI") {
			errs = append(errs, err)
		}

		// Then: it stops after the cursor fails to advance once
		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], ErrCursorStalled)
		require.Equal(t, int32(2), calls.Load())
	})
}

func TestClient_Errors(t *testing.T) {
	t.Run("rpc error object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, WithMaxAttempts(3)).GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)

		var rpcErr *RPCError
		require.ErrorAs(t, err, &rpcErr)
		require.Equal(t, -32602, rpcErr.Code)
	})

	t.Run("http status is surfaced by the sequence", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		var errs []error
		for _, err := range NewClient(srv.URL).Coins(context.Background(), mustAddress(t), "0x2::sui::SUI") {
			errs = append(errs, err)
		}

		require.Len(t, errs, 1)
		require.ErrorContains(t, errs[0], "rpc http 502")
	})

	t.Run("5xx is retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"data":[],"nextCursor":null,"hasNextPage":false}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithMaxAttempts(2), WithRetryDelay(time.Millisecond))
		page, err := c.GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)
		require.NoError(t, err)
		require.Empty(t, page.Data)
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("4xx is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithMaxAttempts(3), WithRetryDelay(time.Millisecond))
		_, err := c.GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)
		require.Error(t, err)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("invalid balance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"data":[{"coinObjectId":"0x1","balance":"-1"}],"hasNextPage":false}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)
		require.ErrorContains(t, err, "invalid balance")
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := NewClient("").GetCoins(context.Background(), mustAddress(t), "0x2::sui::SUI", nil)
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := NewClient(srv.URL, WithMaxAttempts(5)).GetCoins(ctx, mustAddress(t), "0x2::sui::SUI", nil)
		require.Error(t, err)
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
