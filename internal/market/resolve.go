package market

import (
	"context"

	"go.uber.org/zap"

	"lpmarket/internal/model"
)

// Resolver finds which marketplace holds a token id.
type Resolver struct {
	clients []*Client
	logger  *zap.Logger
}

// NewResolver tries clients in the given order.
func NewResolver(logger *zap.Logger, clients ...*Client) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{clients: clients, logger: logger}
}

// Resolve returns the first listing found for tokenID and its type, or
// ListingNull with a nil listing when no marketplace holds it.
func (r *Resolver) Resolve(ctx context.Context, tokenID uint64) (model.ListingType, model.Listing) {
	for _, c := range r.clients {
		listing, err := c.AssembleListing(ctx, tokenID)
		if err == nil && !model.IsPlaceholder(listing) {
			return c.variant.Type, listing
		}
		if ctx.Err() != nil {
			break
		}
		r.logger.Debug("token not in marketplace",
			zap.String("variant", c.variant.Name()),
			zap.Uint64("token_id", tokenID),
			zap.Error(err),
		)
	}
	return model.ListingNull, nil
}
