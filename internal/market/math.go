package market

import "math"

// StarknetTVLEstimate is the fallback chain-wide TVL figure used before pool
// metrics are computed.
const StarknetTVLEstimate = 231984602.0

// RiskScore grades a pool from 0 (safest) to 100 (riskiest) out of its TVL,
// 24h volume and 24h price change.
//
// TVL contributes up to 40 points, volume up to 30, volatility up to 30.
func RiskScore(tvl, volume24h, priceChange24h float64) float64 {
	tvlScore := 40.0 * (1.0 - math.Min(1_000_000.0/tvl, 1.0))
	volumeScore := 30.0 * (1.0 - math.Min(100_000.0/volume24h, 1.0))
	volatilityScore := 30.0 * math.Min(math.Abs(priceChange24h)/100.0, 1.0)

	return 100.0 - (tvlScore + volumeScore + volatilityScore)
}
