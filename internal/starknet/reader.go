package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// Entry point selectors (starknet_keccak of the entry point name).
const (
	selectorBalanceOf   = "0x02e4263afad30923c891518314c3c95dbe830a16874e8abc5777a9a20b54c76e"
	selectorTotalSupply = "0x080aa9fdbfaf9615e4afc7f5f722e265daca5ccc655360fa5ccacf9c267936d"
)

// Reader is the chain collaborator: one read per call, no retries here.
type Reader interface {
	BalanceOf(ctx context.Context, contractAddress, walletAddress string) (*big.Int, error)
	TotalSupply(ctx context.Context, contractAddress string) (*big.Int, error)
}

// RPCClient talks Starknet JSON-RPC 2.0 (starknet_call against the latest
// block). Safe for concurrent use.
type RPCClient struct {
	url   string
	httpc *http.Client
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		url:   url,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

type functionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

type callParams struct {
	Request functionCall `json:"request"`
	BlockID string       `json:"block_id"`
}

type rpcRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Method  string     `json:"method"`
	Params  callParams `json:"params"`
}

type rpcResponse struct {
	Result []string  `json:"result"`
	Error  *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RPCClient) BalanceOf(ctx context.Context, contractAddress, walletAddress string) (*big.Int, error) {
	return c.call(ctx, contractAddress, selectorBalanceOf, []string{walletAddress})
}

func (c *RPCClient) TotalSupply(ctx context.Context, contractAddress string) (*big.Int, error) {
	return c.call(ctx, contractAddress, selectorTotalSupply, []string{})
}

func (c *RPCClient) call(ctx context.Context, contractAddress, selector string, calldata []string) (*big.Int, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "starknet_call",
		Params: callParams{
			Request: functionCall{
				ContractAddress:    contractAddress,
				EntryPointSelector: selector,
				Calldata:           calldata,
			},
			BlockID: "latest",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal starknet_call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build starknet_call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("starknet_call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("starknet_call: unexpected status %s", resp.Status)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode starknet_call response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("starknet_call: rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Result) == 0 {
		return nil, fmt.Errorf("starknet_call: empty result")
	}

	// The first felt carries the low 128 bits of the u256, which is the
	// whole balance for every token we track.
	value, ok := new(big.Int).SetString(trimHexPrefix(out.Result[0]), 16)
	if !ok {
		return nil, fmt.Errorf("starknet_call: malformed felt %q", out.Result[0])
	}
	return value, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
