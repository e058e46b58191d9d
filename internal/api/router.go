// Package api serves the published listing snapshot over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lpmarket/internal/market"
	"lpmarket/internal/model"
	"lpmarket/internal/search"
)

// SnapshotProvider returns the latest published snapshot.
type SnapshotProvider interface {
	Latest() (model.Snapshot, bool)
}

// PriceSource quotes ETH in USD.
type PriceSource interface {
	EthUSD(ctx context.Context) (decimal.Decimal, error)
}

// Deps wires the router. Prices and Gatherer are optional.
type Deps struct {
	Snapshots SnapshotProvider
	Prices    PriceSource
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

type handler struct {
	snapshots SnapshotProvider
	prices    PriceSource
	logger    *zap.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{snapshots: deps.Snapshots, prices: deps.Prices, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	router.GET("/healthz", h.health)
	router.GET("/listings/:variant", h.listings)
	router.GET("/listings/:variant/:id", h.listing)
	router.GET("/resolve/:id", h.resolve)
	router.GET("/search", h.search)
	router.GET("/price/eth", h.ethPrice)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (h *handler) latest(c *gin.Context) (model.Snapshot, bool) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot published yet"})
		return model.Snapshot{}, false
	}
	return snap, true
}

func (h *handler) health(c *gin.Context) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"batch_id":   snap.BatchID,
		"generation": snap.Generation,
		"taken_at":   snap.TakenAt,
		"listings":   snap.Count(),
	})
}

func variantParam(c *gin.Context, name string) (model.ListingType, bool) {
	t, err := model.ParseListingType(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return t, true
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id", "details": err.Error()})
		return 0, false
	}
	return id, true
}

// listings filters a variant by owner, renter or availability. Without a
// filter it returns every record, placeholders included.
func (h *handler) listings(c *gin.Context) {
	t, ok := variantParam(c, "variant")
	if !ok {
		return
	}
	snap, ok := h.latest(c)
	if !ok {
		return
	}
	records := snap.Listings[t]
	switch {
	case c.Query("owner") != "":
		records = market.FilterByOwner(records, c.Query("owner"))
	case c.Query("renter") != "":
		records = market.FilterByRenter(records, c.Query("renter"))
	case c.Query("available") == "true":
		records = market.FilterAvailable(records)
	}
	if records == nil {
		records = []model.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{
		"type":       t,
		"generation": snap.Generation,
		"listings":   records,
	})
}

func find(listings []model.Listing, id uint64) model.Listing {
	for _, l := range listings {
		if l.ID() == id && !model.IsPlaceholder(l) {
			return l
		}
	}
	return nil
}

func (h *handler) listing(c *gin.Context) {
	t, ok := variantParam(c, "variant")
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	snap, ok := h.latest(c)
	if !ok {
		return
	}
	l := find(snap.Listings[t], id)
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": t, "listing": l})
}

// resolve looks a token up in the rental, then the sale marketplace.
func (h *handler) resolve(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	snap, ok := h.latest(c)
	if !ok {
		return
	}
	for _, t := range []model.ListingType{model.ListingRental, model.ListingSale} {
		if l := find(snap.Listings[t], id); l != nil {
			c.JSON(http.StatusOK, gin.H{"type": t, "listing": l})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"type": model.ListingNull, "listing": nil})
}

func (h *handler) search(c *gin.Context) {
	t, err := model.ParseListingType(c.DefaultQuery("variant", string(model.ListingRental)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	criteria := search.Criteria{
		Token0:        c.Query("token0"),
		Token1:        c.Query("token1"),
		Fee:           c.Query("fee"),
		PriceOp:       search.Operator(c.DefaultQuery("price_op", string(search.Less))),
		Price:         c.Query("price"),
		DurationOp:    search.Operator(c.DefaultQuery("duration_op", string(search.Less))),
		Duration:      c.Query("duration"),
		DurationUnit:  c.DefaultQuery("unit", "d"),
		TokenID:       c.Query("token_id"),
		MatchDuration: t == model.ListingRental,
	}
	if err := criteria.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, ok := h.latest(c)
	if !ok {
		return
	}
	records := searchable(snap.Listings[t], t)
	records = search.Filter(records, criteria)
	if records == nil {
		records = []model.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{"type": t, "listings": records})
}

func (h *handler) ethPrice(c *gin.Context) {
	if h.prices == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "price source not configured"})
		return
	}
	price, err := h.prices.EthUSD(c.Request.Context())
	if err != nil {
		h.logger.Warn("eth price unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch price", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coin": "ethereum", "usd": price.String()})
}

// searchable narrows a variant to the records a taker can act on: unrented
// rentals and options offered for sale.
func searchable(listings []model.Listing, t model.ListingType) []model.Listing {
	switch t {
	case model.ListingRental:
		return market.FilterRentable(listings)
	case model.ListingOption:
		return market.FilterForSale(listings)
	default:
		return listings
	}
}
