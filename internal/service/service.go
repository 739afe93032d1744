package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/chat"
	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// Store is the persistent-store contract the service runs on. Both the
// Postgres repository and the in-memory store implement it. Every method that
// touches more than one row is atomic on the store side; the service never
// compensates for partial writes.
type Store interface {
	AddAuction(ctx context.Context, auction models.Auction) (models.Auction, error)
	GetAuctionByUUID(ctx context.Context, UUID string) (models.Auction, error)
	GetOwnerAuctions(ctx context.Context, ownerId string, status models.AuctionStatus, limit, offset int) ([]models.Auction, error)
	GetOpenAuctions(ctx context.Context, providerId, region, size string, limit, offset int) ([]models.AuctionFeedItem, error)
	CancelAuction(ctx context.Context, auctionId string) (models.Auction, error)

	AddBid(ctx context.Context, bid models.Bid) (models.Bid, error)
	GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error)
	GetAuctionBids(ctx context.Context, auctionId string) ([]models.Bid, error)

	SelectWinner(ctx context.Context, auctionId, bidId string) (models.Auction, models.Bid, error)
}

// IdentityProvider resolves the authenticated caller for the current request.
// The second return is false when no identity could be resolved at all.
type IdentityProvider interface {
	CurrentCaller(ctx context.Context) (models.Identity, bool, error)
}

const DefaultDeadlineWindow = 7 * 24 * time.Hour

type Service struct {
	store Store
	ids   IdentityProvider
	chat  chat.ChannelOpener

	storeTimeout   time.Duration
	deadlineWindow time.Duration
	now            func() time.Time
}

type Option func(*Service)

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.storeTimeout = d
	}
}

func WithDeadlineWindow(d time.Duration) Option {
	return func(s *Service) {
		s.deadlineWindow = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, ids IdentityProvider, opener chat.ChannelOpener, opts ...Option) *Service {
	s := &Service{
		store:          store,
		ids:            ids,
		chat:           opener,
		deadlineWindow: DefaultDeadlineWindow,
		now:            time.Now,
	}

	if s.chat == nil {
		s.chat = chat.Noop{}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

//// Service

// caller is the identity guard every operation passes through first.
func (s *Service) caller(ctx context.Context) (models.Identity, error) {
	id, ok, err := s.ids.CurrentCaller(ctx)
	if err != nil {
		return models.Identity{}, fmt.Errorf("service.Service.caller: %w", err)
	}
	if !ok || len(id.Id) == 0 {
		return models.Identity{}, models.ErrUnauthenticated
	}
	return id, nil
}

// storeCtx bounds the time a request may wait on the store; past the bound
// the repository classifies the failure as retryable.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
