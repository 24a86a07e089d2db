package market

import (
	"errors"
	"math"
)

// ErrInvalidPool marks pool data that cannot support metric computation,
// typically a drained or unseeded reserve.
var ErrInvalidPool = errors.New("invalid pool data")

// CoinMarketData holds the raw market inputs for one token/USDC pool and the
// metrics derived from them.
type CoinMarketData struct {
	Price          float64
	ReserveA       float64
	ReserveB       float64
	Volume24h      float64
	PriceChange24h float64

	// Pool metrics
	Liquidity float64
	TVL       float64

	// Computed metrics
	APY       float64
	RiskScore float64
}

// CalculateMetrics derives liquidity, TVL, APY and risk score from the raw
// inputs. Both reserves must be non-zero.
func (d *CoinMarketData) CalculateMetrics() error {
	if d.ReserveA == 0 || d.ReserveB == 0 {
		return ErrInvalidPool
	}

	d.Liquidity = 2.0 * math.Sqrt(d.ReserveA*d.ReserveB)
	d.TVL = (d.ReserveA + d.ReserveB) * d.Price

	apy, err := d.EstimateBaseAPY()
	if err != nil {
		return err
	}
	d.APY = apy

	d.RiskScore = RiskScore(d.TVL, d.Volume24h, d.PriceChange24h)
	return nil
}

// EstimateBaseAPY annualizes the 24h volume against TVL. Protocol fee rates
// are not available on-chain, so this is the fee-free base rate; the
// specialist agent carries fee knowledge in its context instead.
func (d *CoinMarketData) EstimateBaseAPY() (float64, error) {
	if d.TVL <= 0 {
		return 0, ErrInvalidPool
	}
	yearlyVolume := d.Volume24h * 365.0
	return (yearlyVolume / d.TVL) * 100.0, nil
}
