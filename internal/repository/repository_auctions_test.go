package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

func TestAuctions(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	ownerId := NewUUID()
	deadline := time.Now().Add(7 * 24 * time.Hour)

	auction := AddTestAuction(t, ctx, repo, ownerId, deadline)
	if auction.Status != models.AuctionOpen {
		t.Errorf("Expected new auction status '%s', got '%s'", models.AuctionOpen, auction.Status)
	}
	if auction.BidCount != 0 {
		t.Errorf("Expected new auction bid count 0, got %d", auction.BidCount)
	}

	fetched, err := repo.GetAuctionByUUID(ctx, auction.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.OwnerId != ownerId {
		t.Errorf("Expected owner '%s', got '%s'", ownerId, fetched.OwnerId)
	}

	_, err = repo.GetAuctionByUUID(ctx, NewUUID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown auction, got %v", err)
	}

	// Owner listing, newest first.
	AddTestAuction(t, ctx, repo, ownerId, deadline)
	AddTestAuction(t, ctx, repo, NewUUID(), deadline)

	auctions, err := repo.GetOwnerAuctions(ctx, ownerId, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(auctions) != 2 {
		t.Errorf("Expected 2 auctions for owner, got %d", len(auctions))
	}
	for i := 1; i < len(auctions); i++ {
		if auctions[i-1].CreatedAt.Before(auctions[i].CreatedAt) {
			t.Error("Expected owner auctions ordered by creation time descending")
		}
	}

	auctions, err = repo.GetOwnerAuctions(ctx, ownerId, models.AuctionSelected, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(auctions) != 0 {
		t.Errorf("Expected no selected auctions, got %d", len(auctions))
	}
}

func TestOpenAuctionsFeed(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Second)

	live := AddTestAuction(t, ctx, repo, NewUUID(), future)
	expired := AddTestAuction(t, ctx, repo, NewUUID(), past)

	providerId := NewUUID()
	feed, err := repo.GetOpenAuctions(ctx, providerId, "", "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range feed {
		if item.Id == expired.Id {
			t.Error("Expected expired auction to be excluded from the feed")
		}
		if item.OwnBidStatus != "" {
			t.Errorf("Expected no own-bid annotation, got '%s'", item.OwnBidStatus)
		}
	}

	// After bidding, the feed row is annotated with the caller's bid status.
	AddTestBid(t, ctx, repo, live.Id, providerId, 9500000)

	feed, err = repo.GetOpenAuctions(ctx, providerId, "", "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, item := range feed {
		if item.Id == live.Id {
			found = true
			if item.OwnBidStatus != models.BidSubmitted {
				t.Errorf("Expected own bid status '%s', got '%s'", models.BidSubmitted, item.OwnBidStatus)
			}
		}
	}
	if !found {
		t.Error("Expected live auction in the feed")
	}

	// Region filter.
	feed, err = repo.GetOpenAuctions(ctx, providerId, live.Scope.Region, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range feed {
		if item.Scope.Region != live.Scope.Region {
			t.Errorf("Expected only region '%s', got '%s'", live.Scope.Region, item.Scope.Region)
		}
	}
}

func TestCancelAuction(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	auction := AddTestAuction(t, ctx, repo, NewUUID(), time.Now().Add(24*time.Hour))

	cancelled, err := repo.CancelAuction(ctx, auction.Id)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != models.AuctionCancelled {
		t.Errorf("Expected status '%s', got '%s'", models.AuctionCancelled, cancelled.Status)
	}

	_, err = repo.CancelAuction(ctx, auction.Id)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on double cancel, got %v", err)
	}

	_, err = repo.CancelAuction(ctx, NewUUID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown auction, got %v", err)
	}
}
