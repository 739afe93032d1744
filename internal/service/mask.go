package service

import (
	"fmt"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// ViewerRole is a viewer's relation to one bid. Roles, not identities, drive
// visibility so the mask stays a pure function.
type ViewerRole int

const (
	// ViewerOwner owns the auction the bid was placed on.
	ViewerOwner ViewerRole = iota
	// ViewerProvider authored the bid.
	ViewerProvider
	// ViewerStranger is anyone else; they see nothing.
	ViewerStranger
)

// RoleFor classifies a viewer against one bid and its auction's owner.
func RoleFor(bid models.Bid, auctionOwnerId string, viewer models.Identity) ViewerRole {
	switch viewer.Id {
	case auctionOwnerId:
		return ViewerOwner
	case bid.ProviderId:
		return ViewerProvider
	default:
		return ViewerStranger
	}
}

// BidView is a visibility-filtered bid. ProviderId is empty while the
// provider's identity is masked; Label substitutes for it in comparison
// views.
type BidView struct {
	Id          string               `json:"id"`
	Label       string               `json:"label,omitempty"`
	ProviderId  string               `json:"providerId,omitempty"`
	TotalPrice  int64                `json:"totalPrice"`
	Message     string               `json:"message,omitempty"`
	Status      models.BidStatus     `json:"status"`
	Items       []models.BidLineItem `json:"items"`
	SubmittedAt time.Time            `json:"submittedAt"`
}

// MaskBid decides what a viewer role sees of one bid. It is deterministic,
// total and side-effect free: the same (bid, role) pair always yields the
// same view. The auction owner sees price, message and line items of every
// bid but the provider identity only once that bid is selected; a provider
// sees their own bid in full; a stranger sees nothing (second return false).
func MaskBid(bid models.Bid, role ViewerRole, label string) (BidView, bool) {
	switch role {
	case ViewerOwner:
		view := BidView{
			Id:          bid.Id,
			Label:       label,
			TotalPrice:  bid.TotalPrice,
			Message:     bid.Message,
			Status:      bid.Status,
			Items:       bid.Items,
			SubmittedAt: bid.CreatedAt,
		}
		if bid.Status == models.BidSelected {
			view.ProviderId = bid.ProviderId
		}
		return view, true

	case ViewerProvider:
		return BidView{
			Id:          bid.Id,
			ProviderId:  bid.ProviderId,
			TotalPrice:  bid.TotalPrice,
			Message:     bid.Message,
			Status:      bid.Status,
			Items:       bid.Items,
			SubmittedAt: bid.CreatedAt,
		}, true

	default:
		return BidView{}, false
	}
}

// BidLabel names a bid by its position in the price-ordered comparison view:
// "Bid A", "Bid B", ... falling back to numbers past Z.
func BidLabel(position int) string {
	if position >= 0 && position < 26 {
		return fmt.Sprintf("Bid %c", 'A'+position)
	}
	return fmt.Sprintf("Bid %d", position+1)
}
