package controller

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// New auction request

type NewAuctionReq struct {
	Region   string     `json:"region"`
	Size     string     `json:"size"`
	Budget   string     `json:"budget"`
	Schedule string     `json:"schedule"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

func ParseNewAuctionReq(data []byte) (*NewAuctionReq, error) {
	r := &NewAuctionReq{}

	err := json.Unmarshal(data, r)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(r.Region, "region", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(r.Size, "size", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(r.Budget, "budget", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(r.Schedule, "schedule", 500); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *NewAuctionReq) Scope() models.AuctionScope {
	return models.AuctionScope{
		Region:   r.Region,
		Size:     r.Size,
		Budget:   r.Budget,
		Schedule: r.Schedule,
	}
}

func (r *NewAuctionReq) DeadlineOrZero() time.Time {
	if r.Deadline == nil {
		return time.Time{}
	}
	return *r.Deadline
}

// New bid request

type NewBidReq struct {
	TotalPrice int64            `json:"totalPrice"`
	Message    string           `json:"message"`
	Items      []BidLineItemReq `json:"items"`
}

type BidLineItemReq struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
}

func ParseNewBidReq(data []byte) (*NewBidReq, error) {
	r := &NewBidReq{}

	err := json.Unmarshal(data, r)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(r.Message, "message", 500); err != nil {
		return nil, err
	}
	for i, item := range r.Items {
		if len(item.Category) == 0 {
			return nil, fmt.Errorf("line item %d has empty category", i)
		}
		if err = checkLengthLimit(item.Category, "category", 100); err != nil {
			return nil, err
		}
		if err = checkLengthLimit(item.Description, "description", 500); err != nil {
			return nil, err
		}
		if err = checkLengthLimit(item.Unit, "unit", 20); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *NewBidReq) LineItems() []models.BidLineItem {
	items := make([]models.BidLineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, models.BidLineItem{
			Category:    item.Category,
			Description: item.Description,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return items
}

// Winner selection request

type SelectWinnerReq struct {
	BidId string `json:"bidId"`
}

func ParseSelectWinnerReq(data []byte) (*SelectWinnerReq, error) {
	r := &SelectWinnerReq{}

	err := json.Unmarshal(data, r)
	if err != nil {
		return nil, err
	}

	if len(r.BidId) == 0 {
		return nil, fmt.Errorf("empty bidId supplied")
	}

	return r, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
