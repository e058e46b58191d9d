package dex

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"lpmarket/internal/chain"
	"lpmarket/internal/model"
)

// SwapReader rebuilds a pool's swap history from Swap logs when no subgraph is available.
type SwapReader struct {
	logs      chain.LogSource
	caller    chain.Caller
	tokens    *TokenResolver
	batchSize uint64
	logger    *zap.Logger
}

func NewSwapReader(logs chain.LogSource, caller chain.Caller, tokens *TokenResolver, batchSize uint64, logger *zap.Logger) *SwapReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize == 0 {
		batchSize = 2000
	}
	return &SwapReader{logs: logs, caller: caller, tokens: tokens, batchSize: batchSize, logger: logger}
}

// PoolTokens reads token0 and token1 of a pool.
func (r *SwapReader) PoolTokens(ctx context.Context, pool common.Address) (common.Address, common.Address, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := Call(ctx, r.caller, pool, poolABI, "token0")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token0, err := AsAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token0: %w", err)
	}
	values, err = Call(ctx, r.caller, pool, poolABI, "token1")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token1, err := AsAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token1: %w", err)
	}
	return token0, token1, nil
}

// FetchPoolSwaps returns the pool's swaps in [from, to], oldest first, with
// amounts scaled by the pool tokens' decimals.
func (r *SwapReader) FetchPoolSwaps(ctx context.Context, pool common.Address, from, to uint64) ([]model.Swap, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	token0, token1, err := r.PoolTokens(ctx, pool)
	if err != nil {
		return nil, err
	}
	meta0, err := r.tokens.Resolve(ctx, token0.Hex())
	if err != nil {
		return nil, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := r.tokens.Resolve(ctx, token1.Hex())
	if err != nil {
		return nil, fmt.Errorf("token1 metadata: %w", err)
	}

	ranges, err := chain.SplitRange(from, to, r.batchSize)
	if err != nil {
		return nil, err
	}

	topic := []common.Hash{poolABI.Events["Swap"].ID}
	swaps := make([]model.Swap, 0)
	for _, br := range ranges {
		logs, err := r.logs.FilterLogs(ctx, br.From, br.To, []common.Address{pool}, topic)
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", br.From, br.To, err)
		}
		for _, lg := range logs {
			if lg.Removed {
				continue
			}
			swap, err := r.decodeSwap(ctx, lg, meta0.Decimals, meta1.Decimals)
			if err != nil {
				r.logger.Warn("swap decode failed",
					zap.String("tx", lg.TxHash.Hex()),
					zap.Uint("log_index", lg.Index),
					zap.Error(err),
				)
				continue
			}
			swaps = append(swaps, swap)
		}
		r.logger.Debug("swap batch read",
			zap.Uint64("from", br.From),
			zap.Uint64("to", br.To),
			zap.Int("logs", len(logs)),
		)
	}
	return swaps, nil
}

func (r *SwapReader) decodeSwap(ctx context.Context, lg types.Log, decimals0, decimals1 uint8) (model.Swap, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.Swap{}, err
	}
	values, err := poolABI.Unpack("Swap", lg.Data)
	if err != nil {
		return model.Swap{}, fmt.Errorf("unpack swap: %w", err)
	}
	if len(values) != 5 {
		return model.Swap{}, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := AsBigInt(values[0])
	if err != nil {
		return model.Swap{}, err
	}
	amount1, err := AsBigInt(values[1])
	if err != nil {
		return model.Swap{}, err
	}
	tickInt, err := AsBigInt(values[4])
	if err != nil {
		return model.Swap{}, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.Swap{}, err
	}

	ts, err := r.logs.BlockTimestamp(ctx, lg.BlockNumber)
	if err != nil {
		return model.Swap{}, fmt.Errorf("block timestamp: %w", err)
	}

	return model.Swap{
		Amount0:   FormatTokenAmount(amount0, decimals0),
		Amount1:   FormatTokenAmount(amount1, decimals1),
		Timestamp: strconv.FormatUint(ts, 10),
		Tick:      strconv.Itoa(int(tick)),
	}, nil
}
