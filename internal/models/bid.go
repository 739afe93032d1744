package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidSubmitted BidStatus = "submitted"
	BidSelected  BidStatus = "selected"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidSubmitted, BidSelected, BidRejected, BidWithdrawn:
		return true
	default:
		return false
	}
}

type Bid struct {
	Id         string        `json:"id"`
	AuctionId  string        `json:"auctionId"`
	ProviderId string        `json:"-"`
	TotalPrice int64         `json:"totalPrice"`
	Message    string        `json:"message,omitempty"`
	Status     BidStatus     `json:"status"`
	Items      []BidLineItem `json:"items"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"-"`
}

// BidLineItem is one priced work item inside a bid. Line items are written
// once, atomically with the parent bid, and never mutated afterwards.
type BidLineItem struct {
	Id          string          `json:"id"`
	BidId       string          `json:"-"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
	Subtotal    int64           `json:"subtotal"`
	Position    int             `json:"position"`
}

// ComputeSubtotal is the canonical line-item price: unit price times
// quantity, rounded to whole currency units.
func (li BidLineItem) ComputeSubtotal() int64 {
	return li.UnitPrice.Mul(li.Quantity).Round(0).IntPart()
}
