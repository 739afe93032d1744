package service

import (
	"testing"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBid(status models.BidStatus) models.Bid {
	return models.Bid{
		Id:         "bid-1",
		AuctionId:  "auction-1",
		ProviderId: "provider-1",
		TotalPrice: 9500000,
		Message:    "includes demolition and disposal",
		Status:     status,
		Items: []models.BidLineItem{
			{Category: "flooring", UnitPrice: decimal.NewFromInt(95000), Quantity: decimal.NewFromInt(100), Subtotal: 9500000},
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRoleFor(t *testing.T) {
	bid := sampleBid(models.BidSubmitted)

	assert.Equal(t, ViewerOwner, RoleFor(bid, "owner-1", models.Identity{Id: "owner-1"}))
	assert.Equal(t, ViewerProvider, RoleFor(bid, "owner-1", models.Identity{Id: "provider-1"}))
	assert.Equal(t, ViewerStranger, RoleFor(bid, "owner-1", models.Identity{Id: "somebody-else"}))
}

func TestMaskBid_OwnerSeesNoIdentityBeforeSelection(t *testing.T) {
	bid := sampleBid(models.BidSubmitted)

	view, visible := MaskBid(bid, ViewerOwner, "Bid A")
	require.True(t, visible)

	assert.Empty(t, view.ProviderId, "provider identity must stay masked for submitted bids")
	assert.Equal(t, "Bid A", view.Label)
	assert.Equal(t, bid.TotalPrice, view.TotalPrice)
	assert.Equal(t, bid.Message, view.Message)
	assert.Equal(t, bid.Items, view.Items)
}

func TestMaskBid_OwnerSeesNoIdentityOnRejectedBid(t *testing.T) {
	view, visible := MaskBid(sampleBid(models.BidRejected), ViewerOwner, "Bid B")
	require.True(t, visible)
	assert.Empty(t, view.ProviderId)
}

func TestMaskBid_OwnerSeesIdentityAfterSelection(t *testing.T) {
	view, visible := MaskBid(sampleBid(models.BidSelected), ViewerOwner, "Bid A")
	require.True(t, visible)
	assert.Equal(t, "provider-1", view.ProviderId)
}

func TestMaskBid_ProviderSeesOwnBid(t *testing.T) {
	view, visible := MaskBid(sampleBid(models.BidSubmitted), ViewerProvider, "")
	require.True(t, visible)
	assert.Equal(t, "provider-1", view.ProviderId)
	assert.Equal(t, int64(9500000), view.TotalPrice)
}

func TestMaskBid_StrangerSeesNothing(t *testing.T) {
	view, visible := MaskBid(sampleBid(models.BidSubmitted), ViewerStranger, "Bid A")
	assert.False(t, visible)
	assert.Equal(t, BidView{}, view)
}

func TestMaskBid_Deterministic(t *testing.T) {
	bid := sampleBid(models.BidSubmitted)

	first, _ := MaskBid(bid, ViewerOwner, "Bid C")
	for i := 0; i < 10; i++ {
		again, _ := MaskBid(bid, ViewerOwner, "Bid C")
		assert.Equal(t, first, again)
	}
}

func TestBidLabel(t *testing.T) {
	assert.Equal(t, "Bid A", BidLabel(0))
	assert.Equal(t, "Bid B", BidLabel(1))
	assert.Equal(t, "Bid Z", BidLabel(25))
	assert.Equal(t, "Bid 27", BidLabel(26))
}
