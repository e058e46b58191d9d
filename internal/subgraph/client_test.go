package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

type capturedRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newServer(t *testing.T, handle func(req capturedRequest) string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, handle(req))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func swapsPage(timestamps ...int) string {
	swaps := make([]map[string]string, 0, len(timestamps))
	for _, ts := range timestamps {
		swaps = append(swaps, map[string]string{
			"amount0":   "-10",
			"amount1":   "2",
			"amountUSD": "10",
			"timestamp": strconv.Itoa(ts),
			"tick":      "100",
		})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{"pool": map[string]interface{}{"swaps": swaps}},
	})
	return string(body)
}

func TestSwapsSincePaginates(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		switch req.Variables["min_timestamp"] {
		case "1000":
			return swapsPage(1000, 1001, 1002)
		case "1002":
			return swapsPage(1002, 1003)
		default:
			return swapsPage()
		}
	})

	client := NewClient(srv.URL, WithPageSize(3))
	now := time.Unix(1000+86400, 0)
	swaps, err := client.SwapsSince(context.Background(), "0xABC", 1, now)
	require.NoError(t, err)

	require.Len(t, swaps, 5)
	require.Equal(t, "1000", swaps[0].Timestamp)
	require.Equal(t, "1003", swaps[4].Timestamp)
	require.Len(t, *requests, 2)
	require.Equal(t, "0xabc", (*requests)[0].Variables["pool_addr"])
	require.Equal(t, float64(3), (*requests)[0].Variables["page_size"])
}

func TestSwapsSinceClampsStart(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		return swapsPage(5)
	})

	client := NewClient(srv.URL)
	swaps, err := client.SwapsSince(context.Background(), "0xabc", 365, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	require.Equal(t, "0", (*requests)[0].Variables["min_timestamp"])
}

func TestSwapsSinceStopsOnStalledCursor(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		return swapsPage(1000, 1000)
	})

	client := NewClient(srv.URL, WithPageSize(2))
	swaps, err := client.SwapsSince(context.Background(), "0xabc", 0, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Len(t, swaps, 2)
	require.Len(t, *requests, 1)
}

func TestLastSwaps(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		return swapsPage(1003, 1002)
	})

	swaps, err := NewClient(srv.URL).LastSwaps(context.Background(), "0xabc", 1000)
	require.NoError(t, err)
	require.Len(t, swaps, 2)
	require.Equal(t, maxTimestamp, (*requests)[0].Variables["max_timestamp"])
	require.Equal(t, float64(1000), (*requests)[0].Variables["num_swaps"])
}

func TestMissingShapeIsTypedError(t *testing.T) {
	srv, _ := newServer(t, func(req capturedRequest) string {
		return `{"data":{"pool":null}}`
	})
	client := NewClient(srv.URL)

	_, err := client.LastSwaps(context.Background(), "0xabc", 10)
	require.ErrorIs(t, err, model.ErrUnexpectedShape)

	_, err = client.PoolInfo(context.Background(), "0xabc")
	require.ErrorIs(t, err, model.ErrUnexpectedShape)
}

func TestNullDataIsTypedError(t *testing.T) {
	srv, _ := newServer(t, func(req capturedRequest) string {
		return `{"data":null}`
	})
	_, err := NewClient(srv.URL).Position(context.Background(), 1)
	require.ErrorIs(t, err, model.ErrUnexpectedShape)
}

func TestGraphQLErrors(t *testing.T) {
	srv, _ := newServer(t, func(req capturedRequest) string {
		return `{"errors":[{"message":"indexing error"}]}`
	})
	_, err := NewClient(srv.URL).PoolDayData(context.Background(), "0xabc", 30)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	require.Equal(t, []string{"indexing error"}, qe.Messages)
}

func TestPosition(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		return `{"data":{"position":{"pool":{"id":"0xpool"},"depositedToken0":"1.5","depositedToken1":"0.25",
			"token0":{"id":"0xa"},"token1":{"id":"0xb"},"collectedFeesToken0":"0","collectedFeesToken1":"0","liquidity":"42"}}}`
	})

	pos, err := NewClient(srv.URL).Position(context.Background(), 8302)
	require.NoError(t, err)
	require.Equal(t, "0xpool", pos.Pool.ID)
	require.Equal(t, "1.5", pos.DepositedToken0)
	require.Equal(t, "8302", (*requests)[0].Variables["position_id"])
}

func TestFeeTierDistribution(t *testing.T) {
	srv, requests := newServer(t, func(req capturedRequest) string {
		return `{"data":{"asToken0":[{"feeTier":"500","feesUSD":"10","totalValueLockedToken0":"1","totalValueLockedToken1":"2"}],"asToken1":[]}}`
	})

	dist, err := NewClient(srv.URL).FeeTierDistribution(context.Background(), "0xA", "0xB")
	require.NoError(t, err)
	require.Len(t, dist.AsToken0, 1)
	require.Empty(t, dist.AsToken1)
	require.Equal(t, "0xa", (*requests)[0].Variables["token0"])
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).TickRangeInfo(context.Background(), "0xabc", -10, 10)
	require.Error(t, err)
}
