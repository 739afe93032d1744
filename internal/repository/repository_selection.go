package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// SelectWinner applies the all-or-nothing decision: the winning bid becomes
// selected, every other submitted bid becomes rejected and the auction moves
// to selected, in one transaction. The compare-and-swap on auction status is
// the gate: of two concurrent callers only the one whose UPDATE hits a row in
// ('open', 'bidding') proceeds, the other observes zero affected rows and
// fails with ErrAlreadyDecided.
func (repo *Repository) SelectWinner(ctx context.Context, auctionId, bidId string) (models.Auction, models.Bid, error) {
	casQuery := `
	UPDATE auctions
	SET (status, updated_at) = ('selected', CURRENT_TIMESTAMP)
	WHERE id = $1 AND status IN ('open', 'bidding')
	RETURNING id, owner_id, region, size, budget, schedule, status, bid_count, deadline, created_at, updated_at
	`

	winnerQuery := `
	UPDATE bids
	SET (status, updated_at) = ('selected', CURRENT_TIMESTAMP)
	WHERE id = $1 AND auction_id = $2 AND status = 'submitted'
	RETURNING id, auction_id, provider_id, total_price, message, status, created_at, updated_at
	`

	losersQuery := `
	UPDATE bids
	SET (status, updated_at) = ('rejected', CURRENT_TIMESTAMP)
	WHERE auction_id = $1 AND status = 'submitted'
	`

	var auction models.Auction
	var winner models.Bid

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: failed to start transaction: %w", classifyErr(err))
	}

	row := tx.QueryRowContext(ctx, casQuery, auctionId)
	err = scanAuction(row, &auction)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", repo.explainSelectionGate(ctx, auctionId))
	} else if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	row = tx.QueryRowContext(ctx, winnerQuery, bidId, auctionId)
	err = row.Scan(&winner.Id, &winner.AuctionId, &winner.ProviderId, &winner.TotalPrice, &winner.Message, &winner.Status, &winner.CreatedAt, &winner.UpdatedAt)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", repo.explainWinnerGate(ctx, auctionId, bidId))
	} else if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	_, err = tx.ExecContext(ctx, losersQuery, auctionId)
	if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	err = tx.Commit()
	if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: failed to commit transaction: %w", classifyErr(err))
	}

	winner.Items, err = repo.getLineItems(ctx, winner.Id)
	if err != nil {
		return auction, winner, fmt.Errorf("repository.Repository.SelectWinner: %w", err)
	}

	return auction, winner, nil
}

// explainSelectionGate turns a zero-row CAS into the precise domain error:
// missing auction, cancelled auction, or a decision that already happened.
func (repo *Repository) explainSelectionGate(ctx context.Context, auctionId string) error {
	auction, err := repo.GetAuctionByUUID(ctx, auctionId)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("no auction found by UUID %s: %w", auctionId, models.ErrNotFound)
	} else if err != nil {
		return err
	}

	if auction.Status == models.AuctionCancelled {
		return fmt.Errorf("auction is cancelled: %w", models.ErrInvalidState)
	}
	return fmt.Errorf("auction is %s: %w", auction.Status, models.ErrAlreadyDecided)
}

func (repo *Repository) explainWinnerGate(ctx context.Context, auctionId, bidId string) error {
	bid, err := repo.GetBidByUUID(ctx, bidId)
	if err != nil {
		return err
	}
	if bid.AuctionId != auctionId {
		return fmt.Errorf("bid %s does not belong to auction %s: %w", bidId, auctionId, models.ErrNotFound)
	}
	return fmt.Errorf("bid is %s: %w", bid.Status, models.ErrInvalidState)
}
