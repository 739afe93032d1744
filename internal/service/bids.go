package service

import (
	"context"
	"fmt"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// SubmitBid validates and persists one sealed bid with its line items.
// Validation and the deadline gate run before any write; duplicate and
// state-consistency failures surface from the store's own constraints so
// concurrent submissions cannot slip past a pre-check.
func (s *Service) SubmitBid(ctx context.Context, auctionId string, totalPrice int64, message string, items []models.BidLineItem) (models.Bid, error) {
	provider, err := s.caller(ctx)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	err = validateBid(totalPrice, items)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.GetAuctionByUUID(sctx, auctionId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}
	if auction.OwnerId == provider.Id {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: owner cannot bid on own auction: %w", models.ErrUnauthorized)
	}
	if auction.DeadlinePassed(s.now()) {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrDeadlinePassed)
	}

	bid, err := s.store.AddBid(sctx, models.Bid{
		AuctionId:  auctionId,
		ProviderId: provider.Id,
		TotalPrice: totalPrice,
		Message:    message,
		Items:      items,
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	return bid, nil
}

// validateBid enforces the structural bid invariants: non-empty line items,
// positive unit prices and quantities, and a total equal to the sum of the
// computed subtotals. A mismatched total is rejected, never corrected.
func validateBid(totalPrice int64, items []models.BidLineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: bid has no line items", models.ErrInvalidBid)
	}

	var sum int64
	for i := range items {
		item := &items[i]
		if !item.UnitPrice.IsPositive() {
			return fmt.Errorf("%w: line item %d has non-positive unit price", models.ErrInvalidBid, i)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: line item %d has non-positive quantity", models.ErrInvalidBid, i)
		}
		item.Subtotal = item.ComputeSubtotal()
		sum += item.Subtotal
	}

	if sum != totalPrice {
		return fmt.Errorf("%w: total price %d does not match line item sum %d", models.ErrInvalidBid, totalPrice, sum)
	}

	return nil
}

// ListBidsForOwner is the blind comparison view: every live bid on the
// caller's auction, cheapest first, with provider identities masked per the
// visibility rule.
func (s *Service) ListBidsForOwner(ctx context.Context, auctionId string) ([]BidView, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForOwner: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.GetAuctionByUUID(sctx, auctionId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForOwner: %w", err)
	}
	if auction.OwnerId != owner.Id {
		return nil, fmt.Errorf("service.Service.ListBidsForOwner: caller does not own auction: %w", models.ErrUnauthorized)
	}

	bids, err := s.store.GetAuctionBids(sctx, auctionId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForOwner: %w", err)
	}

	views := make([]BidView, 0, len(bids))
	for i, bid := range bids {
		view, visible := MaskBid(bid, ViewerOwner, BidLabel(i))
		if visible {
			views = append(views, view)
		}
	}

	return views, nil
}
