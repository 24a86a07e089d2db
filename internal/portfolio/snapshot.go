package portfolio

import (
	"sync"

	"brother-yield/internal/starknet"
)

// Snapshot holds the latest known balances per wallet. Updates replace the
// wallet's whole entry (last write wins); it is independent of the
// conversation store, the two are never updated transactionally together.
type Snapshot struct {
	mu      sync.RWMutex
	wallets map[string]map[starknet.Token]float64
}

func NewSnapshot() *Snapshot {
	return &Snapshot{wallets: make(map[string]map[starknet.Token]float64)}
}

// Update replaces the stored balances for walletAddress.
func (s *Snapshot) Update(walletAddress string, balances map[starknet.Token]float64) {
	own := make(map[starknet.Token]float64, len(balances))
	for token, amount := range balances {
		own[token] = amount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletAddress] = own
}

// Get returns a copy of the wallet's balances, empty when unknown.
func (s *Snapshot) Get(walletAddress string) map[starknet.Token]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[starknet.Token]float64, len(s.wallets[walletAddress]))
	for token, amount := range s.wallets[walletAddress] {
		out[token] = amount
	}
	return out
}
