package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
	"github.com/zhwltlr/ggaba-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Service interface {
	CreateAuction(ctx context.Context, scope models.AuctionScope, deadline time.Time) (models.Auction, error)
	GetAuction(ctx context.Context, auctionId string) (models.Auction, error)
	ListOwnerAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error)
	ListOpenAuctions(ctx context.Context, region, size string, limit, offset int) ([]models.AuctionFeedItem, error)
	CancelAuction(ctx context.Context, auctionId string) (models.Auction, error)

	SubmitBid(ctx context.Context, auctionId string, totalPrice int64, message string, items []models.BidLineItem) (models.Bid, error)
	ListBidsForOwner(ctx context.Context, auctionId string) ([]service.BidView, error)

	SelectWinner(ctx context.Context, auctionId, bidId string) (service.SelectionResult, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

//// Auctions

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// POST /api/auctions
func (c *Controller) NewAuction(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewAuctionReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	auction, err := c.service.CreateAuction(r.Context(), req.Scope(), req.DeadlineOrZero())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, auction)
}

// GET /api/auctions/{auctionId}
func (c *Controller) GetAuction(w http.ResponseWriter, r *http.Request) {
	auctionId := chi.URLParam(r, "auctionId")
	if len(auctionId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty auctionId supplied")
		return
	}

	auction, err := c.service.GetAuction(r.Context(), auctionId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, auction)
}

// GET /api/auctions/my
func (c *Controller) MyAuctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	status := models.AuctionStatus(query.Get("status"))
	if len(status) > 0 && !models.ValidAuctionStatus(status) {
		c.errorResponse(w, http.StatusBadRequest, "invalid status supplied: "+string(status))
		return
	}

	auctions, err := c.service.ListOwnerAuctions(r.Context(), status, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, auctions)
}

// GET /api/auctions/open
func (c *Controller) OpenAuctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	feed, err := c.service.ListOpenAuctions(r.Context(), query.Get("region"), query.Get("size"), limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, feed)
}

// POST /api/auctions/{auctionId}/cancel
func (c *Controller) CancelAuction(w http.ResponseWriter, r *http.Request) {
	auctionId := chi.URLParam(r, "auctionId")
	if len(auctionId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty auctionId supplied")
		return
	}

	auction, err := c.service.CancelAuction(r.Context(), auctionId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, auction)
}

//// Bids

// POST /api/auctions/{auctionId}/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	auctionId := chi.URLParam(r, "auctionId")
	if len(auctionId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty auctionId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.SubmitBid(r.Context(), auctionId, req.TotalPrice, req.Message, req.LineItems())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, bid)
}

// GET /api/auctions/{auctionId}/bids
func (c *Controller) AuctionBids(w http.ResponseWriter, r *http.Request) {
	auctionId := chi.URLParam(r, "auctionId")
	if len(auctionId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty auctionId supplied")
		return
	}

	views, err := c.service.ListBidsForOwner(r.Context(), auctionId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, views)
}

// POST /api/auctions/{auctionId}/select
func (c *Controller) SelectWinner(w http.ResponseWriter, r *http.Request) {
	auctionId := chi.URLParam(r, "auctionId")
	if len(auctionId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty auctionId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseSelectWinnerReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := c.service.SelectWinner(r.Context(), auctionId, req.BidId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, result)
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		logrus.WithError(err).Error("controller: could not marshal error response")
		return
	}

	_, err = w.Write(data)
	if err != nil {
		logrus.WithError(err).Error("controller: could not write error response")
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		c.errorResponse(w, http.StatusUnauthorized, "no caller identity supplied")
	case errors.Is(err, models.ErrUnauthorized):
		c.errorResponse(w, http.StatusForbidden, "caller has no permission for requested action")
	case errors.Is(err, models.ErrNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested auction or bid does not exist")
	case errors.Is(err, models.ErrInvalidBid):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrDuplicateBid):
		c.errorResponse(w, http.StatusConflict, "provider already has a bid on this auction")
	case errors.Is(err, models.ErrDeadlinePassed):
		c.errorResponse(w, http.StatusConflict, "auction deadline has elapsed")
	case errors.Is(err, models.ErrInvalidState):
		c.errorResponse(w, http.StatusConflict, "operation not permitted for current status")
	case errors.Is(err, models.ErrAlreadyDecided):
		c.errorResponse(w, http.StatusConflict, "winner has already been selected")
	case errors.Is(err, models.ErrUnavailable):
		c.errorResponse(w, http.StatusServiceUnavailable, "store temporarily unavailable, retry")
	default:
		logrus.WithError(err).Error("controller: unexpected service error")
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, status int, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(d)
	if err != nil {
		logrus.WithError(err).Error("controller: could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
