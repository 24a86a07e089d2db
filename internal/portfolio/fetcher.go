// Package portfolio fetches on-chain wallet balances and feeds formatted
// snapshots back into the conversation.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"golang.org/x/sync/errgroup"

	"brother-yield/internal/logger"
	"brother-yield/internal/starknet"
)

// FetchError reports which decimal group failed. Any single group failure
// escalates to total failure: there is no partial-success mode, callers who
// want partial results must re-request with a narrower group set.
type FetchError struct {
	Decimals int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("portfolio fetch failed for %d-decimal group: %v", e.Decimals, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher reads wallet balances for the verified token registry. One task
// per decimal group runs concurrently; reads within a group are sequential
// to bound concurrent connections to the chain endpoint.
type Fetcher struct {
	reader starknet.Reader
}

func NewFetcher(reader starknet.Reader) *Fetcher {
	return &Fetcher{reader: reader}
}

// FetchPortfolio returns the merged token -> amount map for the wallet.
// Tokens with zero balance are omitted, not reported as zero. Amounts are
// raw/10^decimals in float64; this is a documented precision limitation,
// not a fixed-point conversion.
func (f *Fetcher) FetchPortfolio(ctx context.Context, walletAddress string, groups []starknet.TokenGroup) (map[starknet.Token]float64, error) {
	results := make([]map[starknet.Token]float64, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			logger.L().Debugw("fetching balance group", "decimals", group.Decimals, "wallet", walletAddress)
			balances, err := f.fetchGroup(ctx, walletAddress, group)
			if err != nil {
				return &FetchError{Decimals: group.Decimals, Err: err}
			}
			results[i] = balances
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[starknet.Token]float64)
	for _, balances := range results {
		for token, amount := range balances {
			merged[token] = amount
		}
	}
	return merged, nil
}

func (f *Fetcher) fetchGroup(ctx context.Context, walletAddress string, group starknet.TokenGroup) (map[starknet.Token]float64, error) {
	balances := make(map[starknet.Token]float64)
	for _, token := range group.Tokens {
		raw, err := f.reader.BalanceOf(ctx, token.ContractAddress, walletAddress)
		if err != nil {
			return nil, fmt.Errorf("read %s balance: %w", token.Name, err)
		}
		if raw == nil || raw.Sign() <= 0 {
			continue
		}
		rawFloat, _ := new(big.Float).SetInt(raw).Float64()
		balances[token] = rawFloat / math.Pow10(group.Decimals)
	}
	return balances, nil
}
