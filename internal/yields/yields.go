// Package yields turns raw market data into per-pool yield figures for the
// supported token/USDC pairs and keeps the latest snapshot cached for the
// API and the specialist agent.
package yields

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brother-yield/internal/logger"
	"brother-yield/internal/market"
	"brother-yield/internal/starknet"
)

// PoolType is a coarse stability class derived from the pool's risk score.
type PoolType string

const (
	PoolStable   PoolType = "Stable"
	PoolVolatile PoolType = "Volatile"
	PoolDegen    PoolType = "Degen"
)

// ProtocolYield is the computed yield profile of one token/USDC pool.
type ProtocolYield struct {
	Token     starknet.Token `json:"token"`
	APY       float64        `json:"apy"`
	TVL       float64        `json:"tvl"`
	Volume24h float64        `json:"volume_24h"`
	RiskScore float64        `json:"risk_score"`
	PoolType  PoolType       `json:"pool_type"`
}

// classifyPool buckets a risk score into a stability class. Scores run from
// 0 (safest) to 100 (riskiest).
func classifyPool(riskScore float64) PoolType {
	switch {
	case riskScore < 33.0:
		return PoolStable
	case riskScore < 66.0:
		return PoolVolatile
	default:
		return PoolDegen
	}
}

// Analyzer assembles yield data from the market layer.
type Analyzer struct {
	market *market.Client
}

func NewAnalyzer(m *market.Client) *Analyzer {
	return &Analyzer{market: m}
}

// GetYieldsData fetches fresh market data and computes the yield profile of
// every supported pair.
func (a *Analyzer) GetYieldsData(ctx context.Context) ([]ProtocolYield, error) {
	markets, err := a.market.FetchAllTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market data: %w", err)
	}

	out := make([]ProtocolYield, 0, len(markets))
	for _, m := range markets {
		out = append(out, ProtocolYield{
			Token:     m.Token,
			APY:       m.Data.APY,
			TVL:       m.Data.TVL,
			Volume24h: m.Data.Volume24h,
			RiskScore: m.Data.RiskScore,
			PoolType:  classifyPool(m.Data.RiskScore),
		})
	}
	logger.L().Infow("refreshed yields data", "pairs", len(out))
	return out, nil
}

// Filter narrows yields to one token, optionally below a risk ceiling.
// maxRiskScore <= 0 means no risk filter.
func Filter(yields []ProtocolYield, token string, maxRiskScore float64) []ProtocolYield {
	var out []ProtocolYield
	for _, y := range yields {
		if !strings.EqualFold(y.Token.Name, token) {
			continue
		}
		if maxRiskScore > 0 && y.RiskScore > maxRiskScore {
			continue
		}
		out = append(out, y)
	}
	return out
}

// FormatYieldsData renders yields as a single line for prompt injection.
func FormatYieldsData(yields []ProtocolYield) string {
	parts := make([]string, 0, len(yields))
	for _, y := range yields {
		parts = append(parts, fmt.Sprintf("Token: %s, APY: %.2f%%, TVL: $%.2f, Risk Score: %.2f",
			y.Token.Name, y.APY, y.TVL, y.RiskScore))
	}
	return fmt.Sprintf("Here is the latest yields data of {token}/USDC pair: %s.", strings.Join(parts, ", "))
}

// Snapshot is one refresh result with its capture time.
type Snapshot struct {
	Yields    []ProtocolYield
	UpdatedAt time.Time
}
