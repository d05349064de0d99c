package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/awardrobe/pricetracker/internal/pricediff"
)

func (s *Service) handlePriceCreated(ctx context.Context, ev pricediff.CreatedEvent) error {
	s.logger.DebugContext(ctx, "variant first observed",
		slog.String("variant_id", ev.VariantID.String()),
		slog.Int64("price_in_cents", ev.Current.PriceInCents),
		slog.Bool("in_stock", ev.Current.InStock),
	)
	return nil
}

func (s *Service) handlePriceChanged(ctx context.Context, ev pricediff.ChangeEvent) error {
	if _, err := s.changes.HandleChangeEvent(ctx, ev); err != nil {
		return fmt.Errorf("handle price change of variant %s: %w", ev.VariantID, err)
	}
	return nil
}
