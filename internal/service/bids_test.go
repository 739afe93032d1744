package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBid(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)

	bid, err := svc.SubmitBid(asCaller("provider-1"), auction.Id, 9500000, "quick turnaround", testItems(95000, 100))
	require.NoError(t, err)

	assert.NotEmpty(t, bid.Id)
	assert.Equal(t, models.BidSubmitted, bid.Status)
	require.Len(t, bid.Items, 1)
	assert.Equal(t, int64(9500000), bid.Items[0].Subtotal)

	// First bid flips the auction to bidding and counts it.
	updated, err := svc.GetAuction(asCaller("provider-1"), auction.Id)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionBidding, updated.Status)
	assert.Equal(t, 1, updated.BidCount)
}

func TestSubmitBid_Validation(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)
	provider := asCaller("provider-1")

	tests := []struct {
		name       string
		totalPrice int64
		items      []models.BidLineItem
	}{
		{
			name:       "no_line_items",
			totalPrice: 1000,
			items:      nil,
		},
		{
			name:       "total_mismatch",
			totalPrice: 9999999,
			items:      testItems(95000, 100),
		},
		{
			name:       "zero_unit_price",
			totalPrice: 0,
			items:      testItems(0, 100),
		},
		{
			name:       "negative_quantity",
			totalPrice: 100,
			items:      testItems(100, -1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitBid(provider, auction.Id, tc.totalPrice, "", tc.items)
			assert.ErrorIs(t, err, models.ErrInvalidBid)
		})
	}

	// Nothing was written: the auction is untouched.
	updated, err := svc.GetAuction(provider, auction.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.BidCount)
	assert.Equal(t, models.AuctionOpen, updated.Status)
}

func TestSubmitBid_FractionalQuantityRounding(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)

	// 3.5 days at 120,001/day = 420,003.5, rounds to 420,004.
	items := []models.BidLineItem{
		{
			Category:  "labor",
			Unit:      "day",
			UnitPrice: decimal.NewFromInt(120001),
			Quantity:  decimal.RequireFromString("3.5"),
		},
	}

	_, err = svc.SubmitBid(asCaller("provider-1"), auction.Id, 420003, "", items)
	assert.ErrorIs(t, err, models.ErrInvalidBid)

	bid, err := svc.SubmitBid(asCaller("provider-2"), auction.Id, 420004, "", items)
	require.NoError(t, err)
	assert.Equal(t, int64(420004), bid.Items[0].Subtotal)
}

func TestSubmitBid_DuplicateKeepsCountAtOne(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)
	provider := asCaller("provider-1")

	_, err = svc.SubmitBid(provider, auction.Id, 9500000, "", testItems(95000, 100))
	require.NoError(t, err)

	_, err = svc.SubmitBid(provider, auction.Id, 9000000, "", testItems(90000, 100))
	assert.ErrorIs(t, err, models.ErrDuplicateBid)

	updated, err := svc.GetAuction(provider, auction.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.BidCount)
}

func TestSubmitBid_ConcurrentDuplicates(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)
	provider := asCaller("provider-1")

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitBid(provider, auction.Id, 9500000, "", testItems(95000, 100))
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrDuplicateBid):
			duplicates++
		default:
			t.Fatalf("unexpected error: %s", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)

	updated, err := svc.GetAuction(provider, auction.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.BidCount)
}

func TestSubmitBid_ConcurrentProviders(t *testing.T) {
	svc, _ := newTestService()

	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), time.Time{})
	require.NoError(t, err)

	const providers = 8
	errs := make([]error, providers)
	var wg sync.WaitGroup
	for i := 0; i < providers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := asCaller("provider-" + string(rune('a'+i)))
			_, errs[i] = svc.SubmitBid(ctx, auction.Id, 9500000, "", testItems(95000, 100))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// No lost updates: every submission is counted, status ends at bidding.
	updated, err := svc.GetAuction(asCaller("owner-1"), auction.Id)
	require.NoError(t, err)
	assert.Equal(t, providers, updated.BidCount)
	assert.Equal(t, models.AuctionBidding, updated.Status)
}

func TestSubmitBid_DeadlineGate(t *testing.T) {
	svc, _ := newTestService()

	// Deadline one second in the past; stored status is still open.
	deadline := time.Now().Add(-time.Second)
	auction, err := svc.CreateAuction(asCaller("owner-1"), testScope(), deadline)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionOpen, auction.Status)

	_, err = svc.SubmitBid(asCaller("provider-1"), auction.Id, 9500000, "", testItems(95000, 100))
	assert.ErrorIs(t, err, models.ErrDeadlinePassed)
}

func TestSubmitBid_OwnerCannotBid(t *testing.T) {
	svc, _ := newTestService()
	owner := asCaller("owner-1")

	auction, err := svc.CreateAuction(owner, testScope(), time.Time{})
	require.NoError(t, err)

	_, err = svc.SubmitBid(owner, auction.Id, 9500000, "", testItems(95000, 100))
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSubmitBid_AfterSelectionRejected(t *testing.T) {
	svc, _ := newTestService()
	owner := asCaller("owner-1")

	auction, err := svc.CreateAuction(owner, testScope(), time.Time{})
	require.NoError(t, err)

	bid, err := svc.SubmitBid(asCaller("provider-1"), auction.Id, 9500000, "", testItems(95000, 100))
	require.NoError(t, err)

	_, err = svc.SelectWinner(owner, auction.Id, bid.Id)
	require.NoError(t, err)

	_, err = svc.SubmitBid(asCaller("provider-2"), auction.Id, 9000000, "", testItems(90000, 100))
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestListBidsForOwner_MaskedAndOrdered(t *testing.T) {
	svc, _ := newTestService()
	owner := asCaller("owner-1")

	auction, err := svc.CreateAuction(owner, testScope(), time.Time{})
	require.NoError(t, err)

	_, err = svc.SubmitBid(asCaller("provider-1"), auction.Id, 10000000, "", testItems(100000, 100))
	require.NoError(t, err)
	_, err = svc.SubmitBid(asCaller("provider-2"), auction.Id, 9500000, "", testItems(95000, 100))
	require.NoError(t, err)

	views, err := svc.ListBidsForOwner(owner, auction.Id)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Cheapest first, labelled positionally, identities masked.
	assert.Equal(t, "Bid A", views[0].Label)
	assert.Equal(t, int64(9500000), views[0].TotalPrice)
	assert.Equal(t, "Bid B", views[1].Label)
	assert.Equal(t, int64(10000000), views[1].TotalPrice)
	for _, v := range views {
		assert.Empty(t, v.ProviderId)
	}

	// Only the auction owner may compare.
	_, err = svc.ListBidsForOwner(asCaller("provider-1"), auction.Id)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
