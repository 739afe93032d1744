package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

// AddBid persists a bid and its line items and advances the auction as one
// transaction: the auction row is locked first by the counter update, which
// serializes concurrent submissions to the same auction, and the partial
// unique index on (auction_id, provider_id) rejects the second live bid from
// the same provider no matter how the submissions interleave.
func (repo *Repository) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	advanceQuery := `
	UPDATE auctions
	SET (bid_count, status, updated_at) =
		(bid_count + 1, 'bidding', CURRENT_TIMESTAMP)
	WHERE id = $1 AND status IN ('open', 'bidding')
	RETURNING deadline
	`

	insertQuery := `
	INSERT INTO bids (auction_id, provider_id, total_price, message, status)
	VALUES
		($1, $2, $3, $4, 'submitted')
	RETURNING
		id, status, created_at, updated_at
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: failed to start transaction: %w", classifyErr(err))
	}

	var deadline sql.NullTime
	row := tx.QueryRowContext(ctx, advanceQuery, bid.AuctionId)
	err = row.Scan(&deadline)
	if err == sql.ErrNoRows {
		tx.Rollback()
		auction, lookupErr := repo.GetAuctionByUUID(ctx, bid.AuctionId)
		if lookupErr != nil {
			return bid, fmt.Errorf("repository.Repository.AddBid: %w", lookupErr)
		}
		return bid, fmt.Errorf("repository.Repository.AddBid: auction is %s: %w", auction.Status, models.ErrInvalidState)
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	row = tx.QueryRowContext(ctx, insertQuery, bid.AuctionId, bid.ProviderId, bid.TotalPrice, bid.Message)
	err = row.Scan(&bid.Id, &bid.Status, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	err = repo.addLineItems(ctx, tx, &bid)
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", classifyErr(wrapRollbackErr(tx, err)))
	}

	err = tx.Commit()
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: failed to commit transaction: %w", classifyErr(err))
	}

	return bid, nil
}

func (repo *Repository) addLineItems(ctx context.Context, tx *sql.Tx, bid *models.Bid) error {
	query := `
	INSERT INTO bid_line_items (bid_id, category, description, unit, unit_price, quantity, subtotal, position)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	for i := range bid.Items {
		item := &bid.Items[i]
		item.BidId = bid.Id
		item.Position = i

		row := tx.QueryRowContext(ctx, query, bid.Id, item.Category, item.Description, item.Unit, item.UnitPrice, item.Quantity, item.Subtotal, item.Position)
		err := row.Scan(&item.Id)
		if err != nil {
			return fmt.Errorf("repository.Repository.addLineItems: %w", err)
		}
	}

	return nil
}

func (repo *Repository) GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error) {
	var bid models.Bid
	query := `
	SELECT
		id, auction_id, provider_id, total_price, message, status, created_at, updated_at
	FROM bids
	WHERE id = $1
	LIMIT 1
	`

	row := repo.db.QueryRowContext(ctx, query, UUID)
	err := row.Scan(&bid.Id, &bid.AuctionId, &bid.ProviderId, &bid.TotalPrice, &bid.Message, &bid.Status, &bid.CreatedAt, &bid.UpdatedAt)
	if err == sql.ErrNoRows {
		return bid, fmt.Errorf("repository.Repository.GetBidByUUID: no bid found by UUID %s: %w", UUID, models.ErrNotFound)
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBidByUUID: %w", classifyErr(err))
	}

	bid.Items, err = repo.getLineItems(ctx, bid.Id)
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBidByUUID: %w", err)
	}

	return bid, nil
}

// GetAuctionBids returns every non-withdrawn bid on an auction ordered by
// ascending total price, earliest submission first on ties. This is the
// comparison-view order; positional labels are assigned on top of it.
func (repo *Repository) GetAuctionBids(ctx context.Context, auctionId string) ([]models.Bid, error) {
	query := `
	SELECT
		id, auction_id, provider_id, total_price, message, status, created_at, updated_at
	FROM bids
	WHERE auction_id = $1 AND status <> 'withdrawn'
	ORDER BY total_price ASC, created_at ASC
	`

	rows, err := repo.db.QueryContext(ctx, query, auctionId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetAuctionBids: %w", classifyErr(err))
	}
	defer rows.Close()

	var result []models.Bid
	var bid models.Bid
	for rows.Next() {
		err = rows.Scan(&bid.Id, &bid.AuctionId, &bid.ProviderId, &bid.TotalPrice, &bid.Message, &bid.Status, &bid.CreatedAt, &bid.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetAuctionBids: rows scan error: %w", err)
		}
		result = append(result, bid)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetAuctionBids: %w", classifyErr(rows.Err()))
	}

	for i := range result {
		result[i].Items, err = repo.getLineItems(ctx, result[i].Id)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetAuctionBids: %w", err)
		}
	}

	return result, nil
}

func (repo *Repository) getLineItems(ctx context.Context, bidId string) ([]models.BidLineItem, error) {
	query := `
	SELECT
		id, bid_id, category, description, unit, unit_price, quantity, subtotal, position
	FROM bid_line_items
	WHERE bid_id = $1
	ORDER BY position ASC
	`

	rows, err := repo.db.QueryContext(ctx, query, bidId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.getLineItems: %w", classifyErr(err))
	}
	defer rows.Close()

	var result []models.BidLineItem
	var item models.BidLineItem
	for rows.Next() {
		err = rows.Scan(&item.Id, &item.BidId, &item.Category, &item.Description, &item.Unit, &item.UnitPrice, &item.Quantity, &item.Subtotal, &item.Position)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.getLineItems: rows scan error: %w", err)
		}
		result = append(result, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.getLineItems: %w", classifyErr(rows.Err()))
	}

	return result, nil
}
