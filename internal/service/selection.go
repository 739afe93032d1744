package service

import (
	"context"
	"fmt"

	"github.com/zhwltlr/ggaba-sub000/internal/models"

	"github.com/sirupsen/logrus"
)

// SelectionResult is the outcome of a successful winner selection. Warning is
// set when the best-effort collaboration-channel request failed after the
// decision had already committed.
type SelectionResult struct {
	Auction    models.Auction `json:"auction"`
	WinningBid BidView        `json:"winningBid"`
	ChannelId  string         `json:"channelId,omitempty"`
	Warning    string         `json:"warning,omitempty"`
}

// SelectWinner atomically marks one bid selected, every competing submitted
// bid rejected, and the auction selected. The store serializes concurrent
// attempts; the loser of the race gets ErrAlreadyDecided. The collaboration
// channel is requested only after the transaction commits so the external
// call can neither stall nor unwind it.
func (s *Service) SelectWinner(ctx context.Context, auctionId, bidId string) (SelectionResult, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return SelectionResult{}, fmt.Errorf("service.Service.SelectWinner: %w", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	auction, err := s.store.GetAuctionByUUID(sctx, auctionId)
	if err != nil {
		return SelectionResult{}, fmt.Errorf("service.Service.SelectWinner: %w", err)
	}
	if auction.OwnerId != owner.Id {
		return SelectionResult{}, fmt.Errorf("service.Service.SelectWinner: caller does not own auction: %w", models.ErrUnauthorized)
	}
	if auction.DeadlinePassed(s.now()) {
		return SelectionResult{}, fmt.Errorf("service.Service.SelectWinner: %w", models.ErrDeadlinePassed)
	}

	auction, winner, err := s.store.SelectWinner(sctx, auctionId, bidId)
	if err != nil {
		return SelectionResult{}, fmt.Errorf("service.Service.SelectWinner: %w", err)
	}

	view, _ := MaskBid(winner, ViewerOwner, "")
	result := SelectionResult{
		Auction:    auction,
		WinningBid: view,
	}

	// Best effort from here on: the decision is already durable.
	channelId, err := s.chat.OpenChannel(ctx, owner.Id, winner.ProviderId, auctionId)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"auctionId":  auctionId,
			"bidId":      bidId,
			"providerId": winner.ProviderId,
		}).WithError(err).Warn("selection committed but channel request failed")
		result.Warning = "winner selected, but the collaboration channel could not be opened"
		return result, nil
	}
	result.ChannelId = channelId

	return result, nil
}
