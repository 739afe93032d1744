package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a concurrency-safe in-memory implementation of the service
// Store contract, for unit tests and local runs. A single mutex stands in for
// the database transaction: every write holds it for the whole effect, so the
// uniqueness and compare-and-swap semantics match the Postgres repository.
type MemoryStore struct {
	mu        sync.RWMutex
	auctions  map[string]*models.Auction
	bids      map[string]*models.Bid // key: bidId
	byAuction map[string][]string    // key: auctionId -> bidIds, insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions:  make(map[string]*models.Auction),
		bids:      make(map[string]*models.Bid),
		byAuction: make(map[string][]string),
	}
}

func (m *MemoryStore) AddAuction(ctx context.Context, auction models.Auction) (models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	auction.Id = uuid.NewString()
	auction.Status = models.AuctionOpen
	auction.BidCount = 0
	auction.CreatedAt = now
	auction.UpdatedAt = now

	stored := auction
	m.auctions[auction.Id] = &stored
	return auction, nil
}

func (m *MemoryStore) GetAuctionByUUID(ctx context.Context, UUID string) (models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	auction, ok := m.auctions[UUID]
	if !ok {
		return models.Auction{}, fmt.Errorf("repository.MemoryStore.GetAuctionByUUID: no auction found by UUID %s: %w", UUID, models.ErrNotFound)
	}
	return *auction, nil
}

func (m *MemoryStore) GetOwnerAuctions(ctx context.Context, ownerId string, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Auction
	for _, a := range m.auctions {
		if a.OwnerId != ownerId {
			continue
		}
		if len(status) > 0 && a.Status != status {
			continue
		}
		result = append(result, *a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginateAuctions(result, limit, offset), nil
}

func (m *MemoryStore) GetOpenAuctions(ctx context.Context, providerId, region, size string, limit, offset int) ([]models.AuctionFeedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now().UTC()
	var result []models.AuctionFeedItem
	for _, a := range m.auctions {
		if !a.Status.AcceptsBids() || a.DeadlinePassed(now) {
			continue
		}
		if len(region) > 0 && a.Scope.Region != region {
			continue
		}
		if len(size) > 0 && a.Scope.Size != size {
			continue
		}

		item := models.AuctionFeedItem{Auction: *a}
		if own := m.liveBidLocked(a.Id, providerId); own != nil {
			item.OwnBidStatus = own.Status
		}
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, ok := m.auctions[bid.AuctionId]
	if !ok {
		return bid, fmt.Errorf("repository.MemoryStore.AddBid: no auction found by UUID %s: %w", bid.AuctionId, models.ErrNotFound)
	}
	if !auction.Status.AcceptsBids() {
		return bid, fmt.Errorf("repository.MemoryStore.AddBid: auction is %s: %w", auction.Status, models.ErrInvalidState)
	}
	if m.liveBidLocked(bid.AuctionId, bid.ProviderId) != nil {
		return bid, fmt.Errorf("repository.MemoryStore.AddBid: %w", models.ErrDuplicateBid)
	}

	now := time.Now().UTC()
	bid.Id = uuid.NewString()
	bid.Status = models.BidSubmitted
	bid.CreatedAt = now
	bid.UpdatedAt = now
	for i := range bid.Items {
		bid.Items[i].Id = uuid.NewString()
		bid.Items[i].BidId = bid.Id
		bid.Items[i].Position = i
	}

	stored := bid
	stored.Items = append([]models.BidLineItem(nil), bid.Items...)
	m.bids[bid.Id] = &stored
	m.byAuction[bid.AuctionId] = append(m.byAuction[bid.AuctionId], bid.Id)

	auction.BidCount++
	auction.Status = models.AuctionBidding
	auction.UpdatedAt = now

	return bid, nil
}

func (m *MemoryStore) GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bid, ok := m.bids[UUID]
	if !ok {
		return models.Bid{}, fmt.Errorf("repository.MemoryStore.GetBidByUUID: no bid found by UUID %s: %w", UUID, models.ErrNotFound)
	}

	out := *bid
	out.Items = append([]models.BidLineItem(nil), bid.Items...)
	return out, nil
}

func (m *MemoryStore) GetAuctionBids(ctx context.Context, auctionId string) ([]models.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Bid
	for _, id := range m.byAuction[auctionId] {
		bid := m.bids[id]
		if bid.Status == models.BidWithdrawn {
			continue
		}
		out := *bid
		out.Items = append([]models.BidLineItem(nil), bid.Items...)
		result = append(result, out)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalPrice != result[j].TotalPrice {
			return result[i].TotalPrice < result[j].TotalPrice
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (m *MemoryStore) SelectWinner(ctx context.Context, auctionId, bidId string) (models.Auction, models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, ok := m.auctions[auctionId]
	if !ok {
		return models.Auction{}, models.Bid{}, fmt.Errorf("repository.MemoryStore.SelectWinner: no auction found by UUID %s: %w", auctionId, models.ErrNotFound)
	}

	// Same gate as the SQL compare-and-swap on auction status.
	if !auction.Status.AcceptsBids() {
		if auction.Status == models.AuctionCancelled {
			return models.Auction{}, models.Bid{}, fmt.Errorf("repository.MemoryStore.SelectWinner: auction is cancelled: %w", models.ErrInvalidState)
		}
		return models.Auction{}, models.Bid{}, fmt.Errorf("repository.MemoryStore.SelectWinner: auction is %s: %w", auction.Status, models.ErrAlreadyDecided)
	}

	winner, ok := m.bids[bidId]
	if !ok || winner.AuctionId != auctionId {
		return models.Auction{}, models.Bid{}, fmt.Errorf("repository.MemoryStore.SelectWinner: bid %s does not belong to auction %s: %w", bidId, auctionId, models.ErrNotFound)
	}
	if winner.Status != models.BidSubmitted {
		return models.Auction{}, models.Bid{}, fmt.Errorf("repository.MemoryStore.SelectWinner: bid is %s: %w", winner.Status, models.ErrInvalidState)
	}

	now := time.Now().UTC()
	winner.Status = models.BidSelected
	winner.UpdatedAt = now
	for _, id := range m.byAuction[auctionId] {
		other := m.bids[id]
		if other.Status == models.BidSubmitted {
			other.Status = models.BidRejected
			other.UpdatedAt = now
		}
	}
	auction.Status = models.AuctionSelected
	auction.UpdatedAt = now

	outBid := *winner
	outBid.Items = append([]models.BidLineItem(nil), winner.Items...)
	return *auction, outBid, nil
}

func (m *MemoryStore) CancelAuction(ctx context.Context, auctionId string) (models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, ok := m.auctions[auctionId]
	if !ok {
		return models.Auction{}, fmt.Errorf("repository.MemoryStore.CancelAuction: no auction found by UUID %s: %w", auctionId, models.ErrNotFound)
	}
	if auction.Status.Terminal() {
		return models.Auction{}, fmt.Errorf("repository.MemoryStore.CancelAuction: auction is %s: %w", auction.Status, models.ErrInvalidState)
	}

	auction.Status = models.AuctionCancelled
	auction.UpdatedAt = time.Now().UTC()
	return *auction, nil
}

//// Service

// liveBidLocked requires at least a read lock held by the caller.
func (m *MemoryStore) liveBidLocked(auctionId, providerId string) *models.Bid {
	for _, id := range m.byAuction[auctionId] {
		bid := m.bids[id]
		if bid.ProviderId == providerId && bid.Status != models.BidWithdrawn {
			return bid
		}
	}
	return nil
}

func paginateAuctions(list []models.Auction, limit, offset int) []models.Auction {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
