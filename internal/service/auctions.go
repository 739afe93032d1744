package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// CreateAuction posts a new sealed work request for the caller. A zero
// deadline defaults to the configured window from now.
func (s *Service) CreateAuction(ctx context.Context, scope models.AuctionScope, deadline time.Time) (models.Auction, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.CreateAuction: %w", err)
	}

	if deadline.IsZero() {
		deadline = s.now().Add(s.deadlineWindow)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.AddAuction(sctx, models.Auction{
		OwnerId:  owner.Id,
		Scope:    scope,
		Deadline: deadline,
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.CreateAuction: %w", err)
	}

	return auction, nil
}

func (s *Service) GetAuction(ctx context.Context, auctionId string) (models.Auction, error) {
	_, err := s.caller(ctx)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.GetAuction: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.GetAuctionByUUID(sctx, auctionId)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.GetAuction: %w", err)
	}

	return auction, nil
}

// ListOwnerAuctions returns the caller's own auctions, newest first,
// optionally filtered by status.
func (s *Service) ListOwnerAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOwnerAuctions: %w", err)
	}

	if len(status) > 0 && !models.ValidAuctionStatus(status) {
		return nil, fmt.Errorf("service.Service.ListOwnerAuctions: unknown status %s: %w", status, models.ErrInvalidState)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auctions, err := s.store.GetOwnerAuctions(sctx, owner.Id, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOwnerAuctions: %w", err)
	}

	return auctions, nil
}

// ListOpenAuctions is the provider feed: open or bidding auctions with
// unexpired deadlines, annotated with the caller's own bid status where one
// exists.
func (s *Service) ListOpenAuctions(ctx context.Context, region, size string, limit, offset int) ([]models.AuctionFeedItem, error) {
	provider, err := s.caller(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOpenAuctions: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	feed, err := s.store.GetOpenAuctions(sctx, provider.Id, region, size, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOpenAuctions: %w", err)
	}

	return feed, nil
}

// CancelAuction moves a non-terminal auction of the caller to cancelled.
// Cancellation is a status, never a row deletion.
func (s *Service) CancelAuction(ctx context.Context, auctionId string) (models.Auction, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.CancelAuction: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.GetAuctionByUUID(sctx, auctionId)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.CancelAuction: %w", err)
	}
	if auction.OwnerId != owner.Id {
		return models.Auction{}, fmt.Errorf("service.Service.CancelAuction: caller does not own auction: %w", models.ErrUnauthorized)
	}

	auction, err = s.store.CancelAuction(sctx, auctionId)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service.Service.CancelAuction: %w", err)
	}

	return auction, nil
}
