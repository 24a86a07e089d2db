package portfolio

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"brother-yield/internal/llm"
	"brother-yield/internal/logger"
	"brother-yield/internal/starknet"
)

// ValidationError is returned before any network call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var walletAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

type balanceFetcher interface {
	FetchPortfolio(ctx context.Context, walletAddress string, groups []starknet.TokenGroup) (map[starknet.Token]float64, error)
}

// conversationStore is the write side of the history actor. Writes are
// best-effort by contract, so the use case never observes their outcome.
type conversationStore interface {
	AddMessage(id string, msg llm.Message)
}

// UseCase fetches a wallet portfolio, records it as conversation context and
// keeps the application-wide snapshot current.
type UseCase struct {
	fetcher  balanceFetcher
	store    conversationStore
	snapshot *Snapshot
	groups   []starknet.TokenGroup
}

func NewUseCase(fetcher balanceFetcher, store conversationStore, snapshot *Snapshot, groups []starknet.TokenGroup) *UseCase {
	return &UseCase{
		fetcher:  fetcher,
		store:    store,
		snapshot: snapshot,
		groups:   groups,
	}
}

// FetchAndRecord validates inputs, fetches balances, pushes the formatted
// portfolio into the session history and replaces the wallet's snapshot
// entry. On fetch failure nothing is mutated and a typed error is returned.
func (u *UseCase) FetchAndRecord(ctx context.Context, sessionID, walletAddress string) (string, error) {
	if sessionID == "" {
		return "", &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if !walletAddressRe.MatchString(walletAddress) {
		return "", &ValidationError{Field: "wallet_address", Reason: "must be a 0x-prefixed hex address"}
	}

	balances, err := u.fetcher.FetchPortfolio(ctx, walletAddress, u.groups)
	if err != nil {
		return "", fmt.Errorf("fetch portfolio for %s: %w", walletAddress, err)
	}

	holdings := sortedHoldings(balances)

	// Synthetic context, not user input, hence the system role.
	u.store.AddMessage(sessionID, llm.Message{
		Role:    llm.RoleSystem,
		Content: formatPortfolio(walletAddress, holdings),
	})

	ack := fmt.Sprintf("No non-zero balances found for wallet %s.", walletAddress)
	if len(holdings) > 0 {
		largest := holdings[0]
		ack = fmt.Sprintf(
			"I've recorded your portfolio data. Your largest holding is %.6f %s tokens. I'll use this information for any strategy advice.",
			largest.Amount, largest.Token.Name,
		)
		u.store.AddMessage(sessionID, llm.Message{Role: llm.RoleAssistant, Content: ack})
	}

	u.snapshot.Update(walletAddress, balances)
	logger.L().Infow("portfolio recorded", "wallet", walletAddress, "tokens", len(holdings))

	return ack, nil
}

// Holding pairs a token with its fetched amount.
type Holding struct {
	Token  starknet.Token
	Amount float64
}

// sortedHoldings orders descending by amount, ties broken alphabetically by
// token name so that output and "largest holding" are deterministic.
func sortedHoldings(balances map[starknet.Token]float64) []Holding {
	holdings := make([]Holding, 0, len(balances))
	for token, amount := range balances {
		holdings = append(holdings, Holding{Token: token, Amount: amount})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Amount != holdings[j].Amount {
			return holdings[i].Amount > holdings[j].Amount
		}
		return holdings[i].Token.Name < holdings[j].Token.Name
	})
	return holdings
}

func formatPortfolio(walletAddress string, holdings []Holding) string {
	lines := make([]string, 0, len(holdings))
	for _, h := range holdings {
		lines = append(lines, fmt.Sprintf("%s: %.6f tokens", h.Token.Name, h.Amount))
	}
	return fmt.Sprintf(
		"[PORTFOLIO DATA - DO NOT FETCH AGAIN]\nUser wallet %s portfolio balances:\n%s\n[END PORTFOLIO DATA]",
		walletAddress, strings.Join(lines, "\n"),
	)
}
