package models

import "time"

type AuctionStatus string

const (
	AuctionOpen       AuctionStatus = "open"
	AuctionBidding    AuctionStatus = "bidding"
	AuctionSelected   AuctionStatus = "selected"
	AuctionInProgress AuctionStatus = "in_progress"
	AuctionCompleted  AuctionStatus = "completed"
	AuctionCancelled  AuctionStatus = "cancelled"
)

func ValidAuctionStatus(s AuctionStatus) bool {
	switch s {
	case AuctionOpen, AuctionBidding, AuctionSelected, AuctionInProgress, AuctionCompleted, AuctionCancelled:
		return true
	default:
		return false
	}
}

// AcceptsBids reports whether bids may still be submitted against an
// auction in this status. The deadline gate is checked separately.
func (s AuctionStatus) AcceptsBids() bool {
	return s == AuctionOpen || s == AuctionBidding
}

// Terminal reports whether no further status transition is allowed.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionCompleted || s == AuctionCancelled
}

// AuctionScope is the requester-supplied work description. The core treats
// every field as opaque; region and size additionally serve as feed filters.
type AuctionScope struct {
	Region   string `json:"region"`
	Size     string `json:"size"`
	Budget   string `json:"budget"`
	Schedule string `json:"schedule"`
}

type Auction struct {
	Id        string        `json:"id"`
	OwnerId   string        `json:"-"`
	Scope     AuctionScope  `json:"scope"`
	Status    AuctionStatus `json:"status"`
	BidCount  int           `json:"bidCount"`
	Deadline  time.Time     `json:"deadline"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"-"`
}

// DeadlinePassed is the logical deadline gate, evaluated per request.
func (a Auction) DeadlinePassed(now time.Time) bool {
	return !a.Deadline.After(now)
}

// AuctionFeedItem is one row of the provider-facing open-auction feed: the
// auction plus the caller's own bid status, empty if they have not bid yet.
type AuctionFeedItem struct {
	Auction
	OwnBidStatus BidStatus `json:"myBidStatus,omitempty"`
}
