package transfer

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"traceScope/internal/model"
	"traceScope/internal/registry"
)

// ERC-20 function selectors matched against frame calldata.
const (
	transferSelector     = "0xa9059cbb"
	transferFromSelector = "0x23b872dd"
)

const nativeSymbol = "ETH"

// defaultLookupTimeout bounds each token metadata lookup so one
// unresponsive contract cannot stall the batch.
const defaultLookupTimeout = 5 * time.Second

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

func erc20ABIInstance() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(registry.ERC20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// Result is the extractor output: deduplicated transfers plus the token
// metadata map keyed by lowercased contract address.
type Result struct {
	Transfers     []model.TokenTransfer      `json:"transfers"`
	TokenMetadata map[string]model.TokenMeta `json:"token_metadata"`
}

// Extractor walks a parsed call tree and produces its value transfers.
type Extractor struct {
	resolver      MetadataResolver
	logger        *zap.Logger
	lookupTimeout time.Duration
}

// NewExtractor builds an extractor. A nil resolver degrades every token
// to the unknown-metadata sentinel; a nil logger is replaced by a nop.
func NewExtractor(resolver MetadataResolver, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		resolver:      resolver,
		logger:        logger,
		lookupTimeout: defaultLookupTimeout,
	}
}

// Extract walks the tree, detects native and ERC-20 transfers, resolves
// token metadata concurrently, and collapses proxy/implementation
// duplicates. Data-quality problems degrade to sentinels, never errors.
func (e *Extractor) Extract(ctx context.Context, root *model.ParsedCallFrame) *Result {
	detected := make([]model.TokenTransfer, 0)
	if root != nil {
		e.walk(root, nil, &detected)
	}

	metadata := e.resolveAll(ctx, tokenAddresses(detected))

	for i := range detected {
		if detected[i].Type == model.TransferTypeNative {
			detected[i].FormattedAmount = FormatAmount(detected[i].Amount, detected[i].TokenDecimals)
			continue
		}
		meta, ok := metadata[strings.ToLower(detected[i].TokenAddress)]
		if !ok {
			meta = model.UnknownTokenMeta(detected[i].TokenAddress)
		}
		detected[i].TokenName = meta.Name
		detected[i].TokenSymbol = meta.Symbol
		detected[i].TokenDecimals = meta.Decimals
		detected[i].FormattedAmount = FormatAmount(detected[i].Amount, meta.Decimals)
	}

	return &Result{
		Transfers:     dedup(detected),
		TokenMetadata: metadata,
	}
}

func (e *Extractor) walk(frame, parent *model.ParsedCallFrame, out *[]model.TokenTransfer) {
	e.detect(frame, parent, out)
	for _, child := range frame.Calls {
		e.walk(child, frame, out)
	}
}

func (e *Extractor) detect(frame, parent *model.ParsedCallFrame, out *[]model.TokenTransfer) {
	// A DELEGATECALL runs in the caller's identity, so the effective
	// sender is the parent frame's from. Native value on the delegate
	// frame is already attributed at the parent call.
	actualFrom := frame.From
	isDelegate := frame.Type == model.CallTypeDelegateCall
	if isDelegate && parent != nil {
		actualFrom = parent.From
	}

	if !isDelegate && frame.Value != nil && frame.Value.Sign() > 0 {
		*out = append(*out, model.TokenTransfer{
			Type:          model.TransferTypeNative,
			From:          actualFrom,
			To:            frame.To,
			Amount:        new(big.Int).Set(frame.Value),
			TokenSymbol:   nativeSymbol,
			TokenDecimals: 18,
		})
	}

	input := strings.ToLower(frame.Input)
	switch {
	case strings.HasPrefix(input, transferSelector):
		to, amount, ok := unpackTransfer(frame.Input)
		if !ok {
			return
		}
		*out = append(*out, model.TokenTransfer{
			Type:         model.TransferTypeERC20,
			From:         actualFrom,
			To:           to,
			Amount:       amount,
			TokenAddress: frame.To,
		})
	case strings.HasPrefix(input, transferFromSelector):
		from, to, amount, ok := unpackTransferFrom(frame.Input)
		if !ok {
			return
		}
		if isDelegate {
			from = actualFrom
		}
		*out = append(*out, model.TokenTransfer{
			Type:         model.TransferTypeERC20,
			From:         from,
			To:           to,
			Amount:       amount,
			TokenAddress: frame.To,
		})
	}
}

func unpackTransfer(calldata string) (string, *big.Int, bool) {
	values, ok := unpackArgs("transfer", calldata, 2)
	if !ok {
		return "", nil, false
	}
	to, okTo := values[0].(common.Address)
	amount, okAmount := values[1].(*big.Int)
	if !okTo || !okAmount {
		return "", nil, false
	}
	return to.Hex(), new(big.Int).Set(amount), true
}

func unpackTransferFrom(calldata string) (string, string, *big.Int, bool) {
	values, ok := unpackArgs("transferFrom", calldata, 3)
	if !ok {
		return "", "", nil, false
	}
	from, okFrom := values[0].(common.Address)
	to, okTo := values[1].(common.Address)
	amount, okAmount := values[2].(*big.Int)
	if !okFrom || !okTo || !okAmount {
		return "", "", nil, false
	}
	return from.Hex(), to.Hex(), new(big.Int).Set(amount), true
}

func unpackArgs(method, calldata string, want int) ([]interface{}, bool) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, false
	}
	data, err := hexBytes(calldata)
	if err != nil || len(data) < 4 {
		return nil, false
	}
	values, err := parsed.Methods[method].Inputs.Unpack(data[4:])
	if err != nil || len(values) != want {
		return nil, false
	}
	return values, true
}

func hexBytes(input string) ([]byte, error) {
	input = strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	return hexutil.Decode("0x" + input)
}

// resolveAll fans out one lookup per unique token address, each with its
// own timeout. A failed lookup resolves to the unknown sentinel; the
// batch itself never fails.
func (e *Extractor) resolveAll(ctx context.Context, addresses []string) map[string]model.TokenMeta {
	metadata := make(map[string]model.TokenMeta, len(addresses))
	if len(addresses) == 0 {
		return metadata
	}

	if e.resolver == nil {
		for _, addr := range addresses {
			metadata[addr] = model.UnknownTokenMeta(addr)
		}
		return metadata
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range addresses {
		addr := addr
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(gctx, e.lookupTimeout)
			defer cancel()

			meta, err := e.resolver.Resolve(lookupCtx, addr)
			if err != nil {
				e.logger.Warn("token metadata lookup failed", zap.String("token", addr), zap.Error(err))
				meta = model.UnknownTokenMeta(addr)
			}

			mu.Lock()
			metadata[addr] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return metadata
}

func tokenAddresses(transfers []model.TokenTransfer) []string {
	seen := make(map[string]struct{})
	addresses := make([]string, 0)
	for _, t := range transfers {
		if t.Type != model.TransferTypeERC20 || t.TokenAddress == "" {
			continue
		}
		addr := strings.ToLower(t.TokenAddress)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}
	return addresses
}

// dedup collapses transfers sharing (from, to, amount, type). The key
// excludes the token address: the same logical transfer shows up at both
// the proxy's and the implementation's frame with different contract
// addresses. A resolved symbol beats the UNKNOWN sentinel; otherwise the
// first in traversal order wins.
func dedup(transfers []model.TokenTransfer) []model.TokenTransfer {
	out := make([]model.TokenTransfer, 0, len(transfers))
	index := make(map[string]int, len(transfers))
	for _, t := range transfers {
		key := strings.Join([]string{
			strings.ToLower(t.From),
			strings.ToLower(t.To),
			model.BigString(t.Amount),
			t.Type,
		}, "|")
		if at, ok := index[key]; ok {
			if out[at].TokenSymbol == model.UnknownTokenSymbol && t.TokenSymbol != model.UnknownTokenSymbol {
				out[at] = t
			}
			continue
		}
		index[key] = len(out)
		out = append(out, t)
	}
	return out
}
