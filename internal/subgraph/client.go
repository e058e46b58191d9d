// Package subgraph queries the Uniswap V3 subgraph over GraphQL.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"lpmarket/internal/metrics"
	"lpmarket/internal/model"
)

// DefaultURL is the hosted Uniswap V3 subgraph.
const DefaultURL = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"

// DefaultPageSize is the largest page the subgraph serves.
const DefaultPageSize = 1000

const maxTimestamp = "9999999999"

// QueryError carries the errors array of a GraphQL response.
type QueryError struct {
	Operation string
	Messages  []string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("subgraph %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// Client posts GraphQL queries to one subgraph endpoint. No request is retried.
type Client struct {
	url        string
	httpClient *http.Client
	pageSize   int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithPageSize overrides the swap pagination page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageSize:   DefaultPageSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, operation, query string, variables map[string]interface{}, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveSubgraph(operation, err, time.Since(start))
	}()

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("subgraph %s: encode: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("subgraph %s: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("subgraph %s: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("subgraph %s: read body: %w", operation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subgraph %s: status %d", operation, resp.StatusCode)
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &model.ShapeError{Method: operation, Field: "body", Err: err}
	}
	if len(envelope.Errors) > 0 {
		qe := &QueryError{Operation: operation}
		for _, e := range envelope.Errors {
			qe.Messages = append(qe.Messages, e.Message)
		}
		return qe
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &model.ShapeError{Method: operation, Field: "data"}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &model.ShapeError{Method: operation, Field: "data", Err: err}
	}

	c.logger.Debug("subgraph query",
		zap.String("operation", operation),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Position returns deposit and pool data of a position NFT.
func (c *Client) Position(ctx context.Context, tokenID uint64) (Position, error) {
	var out struct {
		Position *Position `json:"position"`
	}
	vars := map[string]interface{}{"position_id": strconv.FormatUint(tokenID, 10)}
	if err := c.do(ctx, "position", positionQuery, vars, &out); err != nil {
		return Position{}, err
	}
	if out.Position == nil {
		return Position{}, &model.ShapeError{Method: "position", Field: "position"}
	}
	if out.Position.Pool == nil {
		return Position{}, &model.ShapeError{Method: "position", Field: "pool"}
	}
	return *out.Position, nil
}

// PoolDayData returns up to days daily snapshots of a pool.
func (c *Client) PoolDayData(ctx context.Context, pool string, days int) ([]PoolDayData, error) {
	var out struct {
		PoolDayDatas *[]PoolDayData `json:"poolDayDatas"`
	}
	vars := map[string]interface{}{"pool_addr": strings.ToLower(pool), "num_days": days}
	if err := c.do(ctx, "poolDayDatas", poolDayDataQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.PoolDayDatas == nil {
		return nil, &model.ShapeError{Method: "poolDayDatas", Field: "poolDayDatas"}
	}
	return *out.PoolDayDatas, nil
}

type poolSwaps struct {
	Pool *struct {
		Swaps *[]model.Swap `json:"swaps"`
	} `json:"pool"`
}

func (p poolSwaps) swaps(operation string) ([]model.Swap, error) {
	if p.Pool == nil {
		return nil, &model.ShapeError{Method: operation, Field: "pool"}
	}
	if p.Pool.Swaps == nil {
		return nil, &model.ShapeError{Method: operation, Field: "swaps"}
	}
	return *p.Pool.Swaps, nil
}

// LastSwaps returns the n most recent swaps of a pool, newest first.
func (c *Client) LastSwaps(ctx context.Context, pool string, n int) ([]model.Swap, error) {
	var out poolSwaps
	vars := map[string]interface{}{
		"max_timestamp": maxTimestamp,
		"pool_addr":     strings.ToLower(pool),
		"num_swaps":     n,
	}
	if err := c.do(ctx, "lastSwaps", lastSwapsQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.swaps("lastSwaps")
}

// SwapsSince returns every swap of the last days days, oldest first. Pages are
// requested with a timestamp_gte cursor set to the last timestamp of the
// previous page, so a swap sharing the boundary timestamp can appear twice.
func (c *Client) SwapsSince(ctx context.Context, pool string, days int, now time.Time) ([]model.Swap, error) {
	start := now.Unix() - int64(86400*days)
	if start < 0 {
		start = 0
	}
	cursor := strconv.FormatInt(start, 10)

	all := make([]model.Swap, 0)
	for {
		var out poolSwaps
		vars := map[string]interface{}{
			"min_timestamp": cursor,
			"pool_addr":     strings.ToLower(pool),
			"page_size":     c.pageSize,
		}
		if err := c.do(ctx, "swapsSince", swapsSinceQuery, vars, &out); err != nil {
			return nil, err
		}
		page, err := out.swaps("swapsSince")
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}

		next := page[len(page)-1].Timestamp
		if next == cursor {
			c.logger.Warn("swap pagination stalled on a single timestamp",
				zap.String("pool", pool),
				zap.String("timestamp", cursor),
			)
			return all, nil
		}
		cursor = next
	}
}

// PoolInfo returns summary statistics of a pool.
func (c *Client) PoolInfo(ctx context.Context, pool string) (PoolInfo, error) {
	var out struct {
		Pool *PoolInfo `json:"pool"`
	}
	vars := map[string]interface{}{"pool_addr": strings.ToLower(pool)}
	if err := c.do(ctx, "poolInfo", poolInfoQuery, vars, &out); err != nil {
		return PoolInfo{}, err
	}
	if out.Pool == nil {
		return PoolInfo{}, &model.ShapeError{Method: "poolInfo", Field: "pool"}
	}
	return *out.Pool, nil
}

// FeeTierDistribution returns every pool of a token pair, in both orders.
func (c *Client) FeeTierDistribution(ctx context.Context, token0, token1 string) (FeeTierDistribution, error) {
	var out struct {
		AsToken0 *[]FeeTierStat `json:"asToken0"`
		AsToken1 *[]FeeTierStat `json:"asToken1"`
	}
	vars := map[string]interface{}{"token0": strings.ToLower(token0), "token1": strings.ToLower(token1)}
	if err := c.do(ctx, "feeTierDistribution", feeTierDistributionQuery, vars, &out); err != nil {
		return FeeTierDistribution{}, err
	}
	if out.AsToken0 == nil || out.AsToken1 == nil {
		return FeeTierDistribution{}, &model.ShapeError{Method: "feeTierDistribution", Field: "pools"}
	}
	return FeeTierDistribution{AsToken0: *out.AsToken0, AsToken1: *out.AsToken1}, nil
}

// TickRangeInfo returns the initialized ticks of a pool within [lower, upper].
func (c *Client) TickRangeInfo(ctx context.Context, pool string, lower, upper int32) ([]TickInfo, error) {
	var out struct {
		Pool *struct {
			Ticks *[]TickInfo `json:"ticks"`
		} `json:"pool"`
	}
	vars := map[string]interface{}{
		"pool_addr":  strings.ToLower(pool),
		"tickLower":  strconv.Itoa(int(lower)),
		"tickHigher": strconv.Itoa(int(upper)),
	}
	if err := c.do(ctx, "tickRange", tickRangeQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Pool == nil || out.Pool.Ticks == nil {
		return nil, &model.ShapeError{Method: "tickRange", Field: "ticks"}
	}
	return *out.Pool.Ticks, nil
}
