package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	"github.com/mamadbah2/lirio/internal/service/stats"
)

// FarmHandler exposes pens, feed and production records over REST.
type FarmHandler struct {
	svc    *farmsvc.Service
	logger *zap.Logger
}

// NewFarmHandler constructs the farm REST adapter.
func NewFarmHandler(svc *farmsvc.Service, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{svc: svc, logger: logger}
}

// Register mounts the farm routes on g.
func (h *FarmHandler) Register(g *gin.RouterGroup) {
	g.GET("/pens", h.ListPens)
	g.POST("/pens", h.CreatePen)
	g.GET("/pens/:id", h.GetPen)
	g.PATCH("/pens/:id", h.UpdatePen)
	g.DELETE("/pens/:id", h.DeletePen)
	g.POST("/pens/:id/movements", h.MoveAnimals)

	g.GET("/feeds", h.ListFeeds)
	g.POST("/feeds", h.CreateFeed)
	g.GET("/feeds/:type", h.GetFeed)
	g.PUT("/feeds/:type", h.UpdateFeed)
	g.DELETE("/feeds/:type", h.DeleteFeed)
	g.POST("/feeds/:type/stock", h.AddFeedStock)
	g.POST("/feeds/:type/consumption", h.RecordConsumption)
	g.PUT("/feeds/:type/daily", h.SetDailyConsumption)

	g.GET("/transactions", h.ListTransactions)
	g.GET("/eggs", h.ListEggs)
	g.POST("/eggs", h.RecordEggs)
	g.GET("/vegetables", h.ListVegetables)
	g.POST("/vegetables", h.RecordVegetables)
	g.GET("/users", h.ListUsers)
	g.GET("/overview", h.Overview)
}

type movementRequest struct {
	Type      models.TransactionType `json:"type" binding:"required"`
	Quantity  int                    `json:"quantity"`
	CreatedBy string                 `json:"created_by"`
}

type feedUpdateRequest struct {
	CurrentStockKg     float64 `json:"current_stock_kg"`
	DailyConsumptionKg float64 `json:"daily_consumption_kg"`
}

type kgRequest struct {
	Kg float64 `json:"kg"`
}

type eggsRequest struct {
	PenID     string `json:"pen_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	CreatedBy string `json:"created_by"`
}

type vegetablesRequest struct {
	VegetableType string  `json:"vegetable_type"`
	WeightKg      float64 `json:"weight_kg"`
	BasePrice     float64 `json:"base_price"`
	CreatedBy     string  `json:"created_by"`
}

func (h *FarmHandler) ListPens(c *gin.Context) {
	pens, err := h.svc.Repositories().Pens.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats.SortPensByType(pens))
}

func (h *FarmHandler) GetPen(c *gin.Context) {
	pen, ok, err := h.svc.Repositories().Pens.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !ok {
		respondError(c, h.logger, farmsvc.ErrPenNotFound)
		return
	}
	c.JSON(http.StatusOK, pen)
}

func (h *FarmHandler) CreatePen(c *gin.Context) {
	var req models.NewPen
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	pen, err := h.svc.CreatePen(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pen)
}

func (h *FarmHandler) UpdatePen(c *gin.Context) {
	var patch models.PenPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	pen, err := h.svc.UpdatePen(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pen)
}

func (h *FarmHandler) DeletePen(c *gin.Context) {
	if err := h.svc.DeletePen(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveAnimals records a birth, purchase, sale or death for a pen.
func (h *FarmHandler) MoveAnimals(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transaction type"})
		return
	}
	pen, tx, err := h.svc.Move(c.Request.Context(), c.Param("id"), req.Quantity, req.Type, req.CreatedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pen": pen, "transaction": tx})
}

func (h *FarmHandler) ListFeeds(c *gin.Context) {
	statuses, err := h.svc.FeedStatuses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *FarmHandler) GetFeed(c *gin.Context) {
	feed, err := h.svc.ResolveFeedType(c.Request.Context(), c.Param("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats.FeedStatusOf(feed))
}

func (h *FarmHandler) CreateFeed(c *gin.Context) {
	var req models.NewFeed
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	feed, err := h.svc.CreateFeedType(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (h *FarmHandler) UpdateFeed(c *gin.Context) {
	var req feedUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	feed, err := h.svc.UpdateFeedType(c.Request.Context(), c.Param("type"), req.CurrentStockKg, req.DailyConsumptionKg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FarmHandler) DeleteFeed(c *gin.Context) {
	if err := h.svc.DeleteFeedType(c.Request.Context(), c.Param("type")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FarmHandler) AddFeedStock(c *gin.Context) {
	h.withKg(c, h.svc.AddFeedStock)
}

// RecordConsumption deducts the body's kg, or the daily amount when kg is omitted.
func (h *FarmHandler) RecordConsumption(c *gin.Context) {
	h.withKg(c, h.svc.RecordConsumption)
}

func (h *FarmHandler) SetDailyConsumption(c *gin.Context) {
	h.withKg(c, h.svc.SetDailyConsumption)
}

func (h *FarmHandler) withKg(c *gin.Context, apply func(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error)) {
	var req kgRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, err)
			return
		}
	}
	feed, err := apply(c.Request.Context(), c.Param("type"), req.Kg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats.FeedStatusOf(feed))
}

func (h *FarmHandler) ListTransactions(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	txs, err := h.svc.Repositories().Transactions.GetAll(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// ListEggs returns the latest egg records, or every record of ?date=.
func (h *FarmHandler) ListEggs(c *gin.Context) {
	ctx := c.Request.Context()
	if date := c.Query("date"); date != "" {
		recs, err := h.svc.Repositories().Eggs.GetByDate(ctx, date)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, recs)
		return
	}

	limit, ok := limitParam(c)
	if !ok {
		return
	}
	recs, err := h.svc.Repositories().Eggs.GetAll(ctx, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *FarmHandler) RecordEggs(c *gin.Context) {
	var req eggsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	rec, err := h.svc.RecordEggs(c.Request.Context(), req.PenID, req.Quantity, req.CreatedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListVegetables returns the latest harvests, or every harvest of ?date=.
func (h *FarmHandler) ListVegetables(c *gin.Context) {
	ctx := c.Request.Context()
	if date := c.Query("date"); date != "" {
		recs, err := h.svc.Repositories().Vegetables.GetByDate(ctx, date)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, recs)
		return
	}

	limit, ok := limitParam(c)
	if !ok {
		return
	}
	recs, err := h.svc.Repositories().Vegetables.GetAll(ctx, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *FarmHandler) RecordVegetables(c *gin.Context) {
	var req vegetablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	rec, err := h.svc.RecordVegetables(c.Request.Context(), req.VegetableType, req.WeightKg, req.BasePrice, req.CreatedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *FarmHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.Repositories().Users.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *FarmHandler) Overview(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// limitParam reads ?limit=; absent means no limit.
func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}
