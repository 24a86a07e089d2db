package yields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brother-yield/internal/starknet"
)

func sampleYields() []ProtocolYield {
	return []ProtocolYield{
		{
			Token:     starknet.Token{Name: "STRK", ContractAddress: starknet.AddressSTRK},
			APY:       12.5,
			TVL:       2_000_000.0,
			Volume24h: 500_000.0,
			RiskScore: 28.0,
			PoolType:  PoolStable,
		},
		{
			Token:     starknet.Token{Name: "BROTHER", ContractAddress: starknet.AddressBROTHER},
			APY:       95.0,
			TVL:       150_000.0,
			Volume24h: 40_000.0,
			RiskScore: 82.0,
			PoolType:  PoolDegen,
		},
	}
}

func TestClassifyPool(t *testing.T) {
	assert.Equal(t, PoolStable, classifyPool(0.0))
	assert.Equal(t, PoolStable, classifyPool(32.9))
	assert.Equal(t, PoolVolatile, classifyPool(33.0))
	assert.Equal(t, PoolVolatile, classifyPool(65.9))
	assert.Equal(t, PoolDegen, classifyPool(66.0))
	assert.Equal(t, PoolDegen, classifyPool(100.0))
}

func TestFilterByToken(t *testing.T) {
	got := Filter(sampleYields(), "strk", 0)
	assert.Len(t, got, 1)
	assert.Equal(t, "STRK", got[0].Token.Name)
}

func TestFilterByRiskCeiling(t *testing.T) {
	got := Filter(sampleYields(), "BROTHER", 50.0)
	assert.Empty(t, got)

	got = Filter(sampleYields(), "BROTHER", 90.0)
	assert.Len(t, got, 1)
}

func TestFormatYieldsData(t *testing.T) {
	got := FormatYieldsData(sampleYields()[:1])
	assert.Equal(t,
		"Here is the latest yields data of {token}/USDC pair: "+
			"Token: STRK, APY: 12.50%, TVL: $2000000.00, Risk Score: 28.00.",
		got)
}

func TestCacheReplacesAndCopies(t *testing.T) {
	c := NewCache()
	assert.Empty(t, c.Get().Yields)
	assert.True(t, c.Get().UpdatedAt.IsZero())

	c.Set(sampleYields())
	snap := c.Get()
	assert.Len(t, snap.Yields, 2)
	assert.False(t, snap.UpdatedAt.IsZero())

	// Mutating a reader's copy must not leak into the cache.
	snap.Yields[0].APY = 0.0
	assert.Equal(t, 12.5, c.Get().Yields[0].APY)

	c.Set(sampleYields()[:1])
	assert.Len(t, c.Get().Yields, 1)
}
