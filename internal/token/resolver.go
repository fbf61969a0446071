package token

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"traceScope/internal/chain"
	"traceScope/internal/model"
)

// MetaStore persists token metadata across runs. Implemented by the
// Postgres store; optional.
type MetaStore interface {
	GetTokenMeta(ctx context.Context, address string) (model.TokenMeta, bool, error)
	UpsertTokenMeta(ctx context.Context, meta model.TokenMeta) error
}

// Resolver resolves ERC-20 metadata via eth_call, backed by an in-memory
// cache and an optional persistent store.
type Resolver struct {
	chain  *chain.Client
	cache  *Cache
	store  MetaStore
	logger *zap.Logger
}

// NewResolver builds a resolver. The store may be nil.
func NewResolver(chainClient *chain.Client, store MetaStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		chain:  chainClient,
		cache:  NewCache(),
		store:  store,
		logger: logger,
	}
}

// Resolve returns metadata for a token contract, consulting the memory
// cache, then the store, then the chain.
func (r *Resolver) Resolve(ctx context.Context, address string) (model.TokenMeta, error) {
	if !common.IsHexAddress(address) {
		return model.TokenMeta{}, fmt.Errorf("invalid token address: %s", address)
	}

	if meta, ok := r.cache.Get(address); ok {
		return meta, nil
	}

	if r.store != nil {
		meta, ok, err := r.store.GetTokenMeta(ctx, address)
		if err != nil {
			r.logger.Debug("token meta store read failed", zap.String("token", address), zap.Error(err))
		} else if ok {
			r.cache.Set(address, meta)
			return meta, nil
		}
	}

	meta, err := r.fetch(ctx, common.HexToAddress(address))
	if err != nil {
		return model.TokenMeta{}, err
	}

	r.cache.Set(address, meta)
	if r.store != nil {
		if err := r.store.UpsertTokenMeta(ctx, meta); err != nil {
			r.logger.Warn("token meta store write failed", zap.String("token", address), zap.Error(err))
		}
	}
	return meta, nil
}

// fetch loads metadata with ERC20 calls, falling back to the bytes32
// variants for symbol and name.
func (r *Resolver) fetch(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if r.chain == nil {
		return meta, fmt.Errorf("chain client is nil")
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := r.chain.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		return values, nil
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	if values, err := call("symbol", stringABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call("symbol", bytes32ABI); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := call("name", stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := call("name", bytes32ABI); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		r.logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
