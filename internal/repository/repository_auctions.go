package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

func (repo *Repository) AddAuction(ctx context.Context, auction models.Auction) (models.Auction, error) {
	query := `
	INSERT INTO auctions (owner_id, region, size, budget, schedule, status, bid_count, deadline)
	VALUES
		($1, $2, $3, $4, $5, 'open', 0, $6)
	RETURNING
		id, status, bid_count, created_at, updated_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		auction.OwnerId, auction.Scope.Region, auction.Scope.Size, auction.Scope.Budget, auction.Scope.Schedule, auction.Deadline)
	err := row.Scan(&auction.Id, &auction.Status, &auction.BidCount, &auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		return auction, fmt.Errorf("repository.Repository.AddAuction: %w", classifyErr(err))
	}

	return auction, nil
}

func (repo *Repository) prepAuctionsQuery(limit, offset int, auctionId, ownerId string, status models.AuctionStatus) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		owner_id,
		region,
		size,
		budget,
		schedule,
		status,
		bid_count,
		deadline,
		created_at,
		updated_at
	FROM auctions
	$conditions$
	ORDER BY created_at DESC
	LIMIT $1
	OFFSET $2
	`

	queryParams = make([]interface{}, 0, 5)
	conditions := make([]string, 0, 3)

	if limit <= 0 {
		queryParams = append(queryParams, nil)
	} else {
		queryParams = append(queryParams, limit)
	}
	queryParams = append(queryParams, offset)

	if len(auctionId) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, auctionId)
	}

	if len(ownerId) > 0 {
		conditions = append(conditions, "owner_id = $$")
		queryParams = append(queryParams, ownerId)
	}

	if len(status) > 0 {
		conditions = append(conditions, "status = $$")
		queryParams = append(queryParams, string(status))
	}

	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	query = strings.Replace(query, "$conditions$", condStr, -1)

	return query, queryParams
}

func (repo *Repository) GetOwnerAuctions(ctx context.Context, ownerId string, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	query, queryParams := repo.prepAuctionsQuery(limit, offset, "", ownerId, status)

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetOwnerAuctions: %w", classifyErr(err))
	}
	defer rows.Close()

	var result []models.Auction
	auction := models.Auction{}
	for rows.Next() {
		err = scanAuction(rows, &auction)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetOwnerAuctions: row scan failed: %w", err)
		}
		result = append(result, auction)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetOwnerAuctions: %w", classifyErr(rows.Err()))
	}

	return result, nil
}

func (repo *Repository) GetAuctionByUUID(ctx context.Context, UUID string) (models.Auction, error) {
	var auction models.Auction
	query, queryParams := repo.prepAuctionsQuery(1, 0, UUID, "", "")

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return auction, fmt.Errorf("repository.Repository.GetAuctionByUUID: %w", classifyErr(err))
	}
	defer rows.Close()

	if rows.Next() {
		err = scanAuction(rows, &auction)
		if err != nil {
			return auction, fmt.Errorf("repository.Repository.GetAuctionByUUID: row scan failed: %w", err)
		}
	} else {
		return auction, fmt.Errorf("repository.Repository.GetAuctionByUUID: no auction found by UUID %s: %w", UUID, models.ErrNotFound)
	}

	return auction, nil
}

// GetOpenAuctions is the provider feed: open or bidding auctions whose
// deadline has not yet passed, optionally filtered by region and size. Each
// row carries the caller's own bid status when they have already bid.
func (repo *Repository) GetOpenAuctions(ctx context.Context, providerId, region, size string, limit, offset int) ([]models.AuctionFeedItem, error) {
	query := `
	SELECT
		a.id,
		a.owner_id,
		a.region,
		a.size,
		a.budget,
		a.schedule,
		a.status,
		a.bid_count,
		a.deadline,
		a.created_at,
		a.updated_at,
		b.status
	FROM auctions a
	LEFT JOIN bids b
		ON b.auction_id = a.id AND b.provider_id = $3 AND b.status <> 'withdrawn'
	WHERE a.status IN ('open', 'bidding')
		AND a.deadline > CURRENT_TIMESTAMP
		AND ($4 = '' OR a.region = $4)
		AND ($5 = '' OR a.size = $5)
	ORDER BY a.created_at DESC
	LIMIT $1
	OFFSET $2
	`

	var limitParam interface{}
	if limit > 0 {
		limitParam = limit
	}

	rows, err := repo.db.QueryContext(ctx, query, limitParam, offset, providerId, region, size)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetOpenAuctions: %w", classifyErr(err))
	}
	defer rows.Close()

	var result []models.AuctionFeedItem
	var item models.AuctionFeedItem
	var ownStatus sql.NullString
	for rows.Next() {
		err = rows.Scan(&item.Id, &item.OwnerId, &item.Scope.Region, &item.Scope.Size, &item.Scope.Budget, &item.Scope.Schedule,
			&item.Status, &item.BidCount, &item.Deadline, &item.CreatedAt, &item.UpdatedAt, &ownStatus)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetOpenAuctions: row scan failed: %w", err)
		}
		item.OwnBidStatus = ""
		if ownStatus.Valid {
			item.OwnBidStatus = models.BidStatus(ownStatus.String)
		}
		result = append(result, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetOpenAuctions: %w", classifyErr(rows.Err()))
	}

	return result, nil
}

// CancelAuction flips any non-terminal auction to cancelled. The affected-row
// check makes re-cancellation and cancellation of finished auctions fail
// instead of silently rewriting history.
func (repo *Repository) CancelAuction(ctx context.Context, auctionId string) (models.Auction, error) {
	query := `
	UPDATE auctions
	SET (status, updated_at) = ('cancelled', CURRENT_TIMESTAMP)
	WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
	RETURNING id, owner_id, region, size, budget, schedule, status, bid_count, deadline, created_at, updated_at
	`

	var auction models.Auction
	row := repo.db.QueryRowContext(ctx, query, auctionId)
	err := row.Scan(&auction.Id, &auction.OwnerId, &auction.Scope.Region, &auction.Scope.Size, &auction.Scope.Budget, &auction.Scope.Schedule,
		&auction.Status, &auction.BidCount, &auction.Deadline, &auction.CreatedAt, &auction.UpdatedAt)
	if err == sql.ErrNoRows {
		// Either missing or already terminal; look once more to tell apart.
		auction, err = repo.GetAuctionByUUID(ctx, auctionId)
		if err != nil {
			return auction, fmt.Errorf("repository.Repository.CancelAuction: %w", err)
		}
		return auction, fmt.Errorf("repository.Repository.CancelAuction: auction is %s: %w", auction.Status, models.ErrInvalidState)
	} else if err != nil {
		return auction, fmt.Errorf("repository.Repository.CancelAuction: %w", classifyErr(err))
	}

	return auction, nil
}

//// Service

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner, auction *models.Auction) error {
	return row.Scan(&auction.Id, &auction.OwnerId, &auction.Scope.Region, &auction.Scope.Size, &auction.Scope.Budget, &auction.Scope.Schedule,
		&auction.Status, &auction.BidCount, &auction.Deadline, &auction.CreatedAt, &auction.UpdatedAt)
}
