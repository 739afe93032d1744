package router

import (
	"net/http"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/controller"
	"github.com/zhwltlr/ggaba-sub000/internal/models"
	"github.com/zhwltlr/ggaba-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(c *controller.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(callerIdentity)

	r.Get("/api/ping", c.Ping)

	r.Route("/api/auctions", func(r chi.Router) {
		r.Post("/", c.NewAuction)
		r.Get("/my", c.MyAuctions)
		r.Get("/open", c.OpenAuctions)
		r.Get("/{auctionId}", c.GetAuction)
		r.Post("/{auctionId}/cancel", c.CancelAuction)
		r.Post("/{auctionId}/bids", c.NewBid)
		r.Get("/{auctionId}/bids", c.AuctionBids)
		r.Post("/{auctionId}/select", c.SelectWinner)
	})

	return r
}

// callerIdentity lifts the authenticated identity off the request headers
// into the context. In production these headers are set by the auth gateway
// in front of this service; the core only consumes the result.
func callerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerId := r.Header.Get("X-Caller-Id")
		if len(callerId) > 0 {
			id := models.Identity{Id: callerId, Name: r.Header.Get("X-Caller-Name")}
			r = r.WithContext(service.ContextWithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logrus.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start).String(),
			"requestId": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}
