package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"annapurna-pos/internal/services/billing"
	"annapurna-pos/internal/storage"
)

type ReportsHTTPHandler struct {
	store   storage.Store
	billing *billing.Service
}

func NewReportsHTTPHandler(store storage.Store, billingSvc *billing.Service) *ReportsHTTPHandler {
	return &ReportsHTTPHandler{store: store, billing: billingSvc}
}

// RecentOrders returns the persisted orders from the last 24 hours,
// newest first, capped at 20.
func (h *ReportsHTTPHandler) RecentOrders(c *gin.Context) {
	recent, err := h.store.FetchRecentOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Recent orders", recent))
}

// Summary aggregates the recent window into a small sales report.
func (h *ReportsHTTPHandler) Summary(c *gin.Context) {
	recent, err := h.store.FetchRecentOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	gross := decimal.Zero
	parcelCharges := decimal.Zero
	for _, order := range recent {
		if total, err := decimal.NewFromString(order.Total); err == nil {
			gross = gross.Add(total)
		}
		if pc, err := decimal.NewFromString(order.ParcelCharges); err == nil {
			parcelCharges = parcelCharges.Add(pc)
		}
	}

	c.JSON(http.StatusOK, successResponse("Sales summary", gin.H{
		"orders_count":   len(recent),
		"gross_total":    gross.String(),
		"parcel_charges": parcelCharges.String(),
	}))
}

type ResetCounterRequest struct {
	Date string `json:"date,omitempty"`
}

// ResetBillCounter is the administrative reset of a day's bill sequence.
func (h *ReportsHTTPHandler) ResetBillCounter(c *gin.Context) {
	var req ResetCounterRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.billing.ResetBillCounter(c.Request.Context(), req.Date); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Bill counter reset", nil))
}
