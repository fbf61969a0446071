package transfer

import (
	"context"

	"traceScope/internal/model"
)

// MetadataResolver looks up ERC-20 name/symbol/decimals for a token
// contract address. Implementations may hit the chain, a cache, or both.
type MetadataResolver interface {
	Resolve(ctx context.Context, address string) (model.TokenMeta, error)
}

// ResolverFunc adapts a function to MetadataResolver.
type ResolverFunc func(ctx context.Context, address string) (model.TokenMeta, error)

// Resolve calls the wrapped function.
func (f ResolverFunc) Resolve(ctx context.Context, address string) (model.TokenMeta, error) {
	return f(ctx, address)
}
