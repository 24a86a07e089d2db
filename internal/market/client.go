// Package market fetches token/USDC pool data for the supported yield pairs
// and derives pool metrics from it. Prices come from CoinGecko, reserves
// from on-chain total supplies.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"sort"
	"strings"
	"time"

	"brother-yield/internal/logger"
	"brother-yield/internal/starknet"
)

const (
	geckoChainID = "starknet"
	geckoBaseURL = "https://api.coingecko.com/api/v3"

	usdcDecimals  = 6
	tokenDecimals = 18
)

// TokenMarket pairs a tracked token with its computed market data.
type TokenMarket struct {
	Token starknet.Token
	Data  CoinMarketData
}

// Client fetches market data for the supported yield tokens. Supported for
// now: BROTHER, STRK, ETH, all against USDC.
type Client struct {
	apiKey string
	httpc  *http.Client
	reader starknet.Reader
}

func NewClient(apiKey string, reader starknet.Reader) *Client {
	return &Client{
		apiKey: apiKey,
		httpc:  &http.Client{Timeout: 30 * time.Second},
		reader: reader,
	}
}

// trackedTokens lists the pairs the analyzer covers.
func trackedTokens() []starknet.Token {
	return []starknet.Token{
		{Name: "BROTHER", ContractAddress: starknet.AddressBROTHER},
		{Name: "STRK", ContractAddress: starknet.AddressSTRK},
		{Name: "ETH", ContractAddress: starknet.AddressETH},
	}
}

// FetchAllTokens pulls spot prices and 24h stats from CoinGecko, reads the
// pool reserves on-chain and computes metrics per token. Results come back
// sorted by token name.
func (c *Client) FetchAllTokens(ctx context.Context) ([]TokenMarket, error) {
	tracked := trackedTokens()
	nameByAddress := make(map[string]starknet.Token, len(tracked))
	addresses := make([]string, 0, len(tracked))
	for _, t := range tracked {
		nameByAddress[strings.ToLower(t.ContractAddress)] = t
		addresses = append(addresses, t.ContractAddress)
	}

	prices, err := c.fetchTokenPrices(ctx, addresses)
	if err != nil {
		return nil, err
	}

	usdcReserve, err := c.fetchUSDCReserve(ctx)
	if err != nil {
		return nil, err
	}

	var out []TokenMarket
	for address, stats := range prices {
		token, ok := nameByAddress[strings.ToLower(address)]
		if !ok {
			continue
		}

		reserveA, err := c.fetchTokenReserve(ctx, token.ContractAddress)
		if err != nil {
			return nil, fmt.Errorf("fetch %s reserve: %w", token.Name, err)
		}

		data := CoinMarketData{
			Price:          stats["usd"],
			ReserveA:       reserveA,
			ReserveB:       usdcReserve,
			Volume24h:      stats["usd_24h_vol"],
			PriceChange24h: stats["usd_24h_change"],
			TVL:            StarknetTVLEstimate,
		}
		if err := data.CalculateMetrics(); err != nil {
			return nil, fmt.Errorf("compute %s metrics: %w", token.Name, err)
		}

		logger.L().Debugw("fetched token market data",
			"token", token.Name, "price", data.Price, "volume_24h", data.Volume24h)

		out = append(out, TokenMarket{Token: token, Data: data})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Token.Name < out[j].Token.Name })
	return out, nil
}

func (c *Client) fetchTokenPrices(ctx context.Context, addresses []string) (map[string]map[string]float64, error) {
	url := fmt.Sprintf(
		"%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd&include_market_cap=true&include_24hr_vol=true&include_24hr_change=true",
		geckoBaseURL, geckoChainID, strings.Join(addresses, ","),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build token_price request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-cg-demo-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch token prices: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch token prices: unexpected status %s", resp.Status)
	}

	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, fmt.Errorf("decode token prices: %w", err)
	}
	return prices, nil
}

// fetchTokenReserve reads the token's total supply and scales it down by the
// default ERC-20 precision of 18 decimals.
func (c *Client) fetchTokenReserve(ctx context.Context, contractAddress string) (float64, error) {
	raw, err := c.reader.TotalSupply(ctx, contractAddress)
	if err != nil {
		return 0, err
	}
	return scaleDown(raw, tokenDecimals), nil
}

// fetchUSDCReserve reads the USDC total supply. Starknet USDC carries 6
// decimals, unlike the 18 of the tracked tokens.
func (c *Client) fetchUSDCReserve(ctx context.Context) (float64, error) {
	raw, err := c.reader.TotalSupply(ctx, starknet.AddressUSDC)
	if err != nil {
		return 0, fmt.Errorf("fetch USDC reserve: %w", err)
	}
	return scaleDown(raw, usdcDecimals), nil
}

func scaleDown(raw *big.Int, decimals int) float64 {
	f, _ := new(big.Float).SetInt(raw).Float64()
	return f / math.Pow10(decimals)
}
