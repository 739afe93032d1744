package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

func TestSelectWinner(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	auction := AddTestAuction(t, ctx, repo, NewUUID(), time.Now().Add(24*time.Hour))
	loser := AddTestBid(t, ctx, repo, auction.Id, NewUUID(), 12000000)
	winner := AddTestBid(t, ctx, repo, auction.Id, NewUUID(), 9500000)

	updated, selected, err := repo.SelectWinner(ctx, auction.Id, winner.Id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.AuctionSelected {
		t.Errorf("Expected auction status '%s', got '%s'", models.AuctionSelected, updated.Status)
	}
	if selected.Status != models.BidSelected {
		t.Errorf("Expected winning bid status '%s', got '%s'", models.BidSelected, selected.Status)
	}
	if len(selected.Items) != 1 {
		t.Errorf("Expected line items loaded for the winning bid, got %d", len(selected.Items))
	}

	rejected, err := repo.GetBidByUUID(ctx, loser.Id)
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != models.BidRejected {
		t.Errorf("Expected losing bid status '%s', got '%s'", models.BidRejected, rejected.Status)
	}

	// Selection is exclusive, a second attempt loses the CAS.
	_, _, err = repo.SelectWinner(ctx, auction.Id, loser.Id)
	if !errors.Is(err, models.ErrAlreadyDecided) {
		t.Errorf("Expected ErrAlreadyDecided on repeated selection, got %v", err)
	}
}

func TestSelectWinnerGates(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	auction := AddTestAuction(t, ctx, repo, NewUUID(), time.Now().Add(24*time.Hour))
	bid := AddTestBid(t, ctx, repo, auction.Id, NewUUID(), 10000000)

	other := AddTestAuction(t, ctx, repo, NewUUID(), time.Now().Add(24*time.Hour))

	_, _, err := repo.SelectWinner(ctx, NewUUID(), bid.Id)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown auction, got %v", err)
	}

	// The named bid must belong to the auction being decided.
	_, _, err = repo.SelectWinner(ctx, other.Id, bid.Id)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for bid on another auction, got %v", err)
	}
	restored, err := repo.GetAuctionByUUID(ctx, other.Id)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Status != models.AuctionOpen {
		t.Errorf("Expected failed selection to roll back, auction status is '%s'", restored.Status)
	}

	_, _, err = repo.SelectWinner(ctx, auction.Id, NewUUID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown bid, got %v", err)
	}

	if _, err := repo.CancelAuction(ctx, auction.Id); err != nil {
		t.Fatal(err)
	}
	_, _, err = repo.SelectWinner(ctx, auction.Id, bid.Id)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for cancelled auction, got %v", err)
	}
}
