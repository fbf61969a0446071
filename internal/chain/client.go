package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"traceScope/internal/model"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// TraceCall runs debug_traceCall with the callTracer and returns the raw
// call-frame tree for the simulated call.
func (c *Client) TraceCall(ctx context.Context, req model.TraceRequest, block string) (*model.RawCallFrame, error) {
	if block == "" {
		block = "latest"
	}

	callArgs := map[string]interface{}{
		"from": req.From,
	}
	if req.To != "" {
		callArgs["to"] = req.To
	}
	if req.Value != "" {
		callArgs["value"] = req.Value
	}
	if req.Data != "" {
		callArgs["data"] = req.Data
	}

	traceConfig := map[string]interface{}{
		"tracer": "callTracer",
	}

	var frame model.RawCallFrame
	if err := c.rpcClient.CallContext(ctx, &frame, "debug_traceCall", callArgs, block, traceConfig); err != nil {
		return nil, err
	}
	return &frame, nil
}
