package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"annapurna-pos/internal/services/menu"
	"annapurna-pos/internal/services/orders"
	"annapurna-pos/internal/services/printing"
)

type POSHTTPHandler struct {
	controller *orders.Controller
	menu       *menu.Service
	printing   *printing.Service
}

func NewPOSHTTPHandler(controller *orders.Controller, menuSvc *menu.Service, printSvc *printing.Service) *POSHTTPHandler {
	return &POSHTTPHandler{
		controller: controller,
		menu:       menuSvc,
		printing:   printSvc,
	}
}

type AddItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type UpdateParcelChargeRequest struct {
	Charge float64 `json:"charge"`
}

type UpdateServiceChargeRequest struct {
	Percent *int `json:"percent" binding:"required"`
}

type PrintRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *POSHTTPHandler) ListTables(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Tables", h.controller.Tables()))
}

func (h *POSHTTPHandler) SelectTable(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid table number"))
		return
	}

	order, err := h.controller.SelectTable(number)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Table selected", order))
}

func (h *POSHTTPHandler) CurrentOrder(c *gin.Context) {
	order := h.controller.CurrentOrder()
	if order == nil {
		c.JSON(http.StatusNotFound, errorResponse("no order open"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Current order", order))
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Orders", h.controller.Orders()))
}

func (h *POSHTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("item_id required"))
		return
	}

	item, err := h.menu.Get(c.Request.Context(), req.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
		return
	}

	order, err := h.controller.AddItemToOrder(*item)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Item added", order))
}

func (h *POSHTTPHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("quantity required"))
		return
	}

	order, err := h.controller.UpdateItemQuantity(c.Param("itemId"), *req.Quantity)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Quantity updated", order))
}

func (h *POSHTTPHandler) ToggleParcel(c *gin.Context) {
	order, err := h.controller.ToggleItemParcel(c.Param("itemId"))
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Parcel toggled", order))
}

func (h *POSHTTPHandler) UpdateParcelCharge(c *gin.Context) {
	var req UpdateParcelChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("charge required"))
		return
	}

	order, err := h.controller.UpdateItemParcelCharge(c.Param("itemId"), decimal.NewFromFloat(req.Charge))
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Parcel charge updated", order))
}

func (h *POSHTTPHandler) UpdateServiceCharge(c *gin.Context) {
	var req UpdateServiceChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("percent required"))
		return
	}

	order, err := h.controller.UpdateServiceCharge(*req.Percent)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Service charge updated", order))
}

func (h *POSHTTPHandler) SaveOrder(c *gin.Context) {
	order, err := h.controller.SaveOrder()
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Order saved", order))
}

func (h *POSHTTPHandler) CompleteOrder(c *gin.Context) {
	order, err := h.controller.CompleteOrder(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Order completed", order))
}

func (h *POSHTTPHandler) BackToTables(c *gin.Context) {
	if err := h.controller.BackToTables(); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Back to tables", nil))
}

// Print runs the print flow and also returns the rendered documents so
// the browser can put them on its own print surface.
func (h *POSHTTPHandler) Print(c *gin.Context) {
	var req PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("type required: kot, customer or both"))
		return
	}

	printType := orders.PrintType(req.Type)
	order, err := h.controller.HandlePrint(c.Request.Context(), printType)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err.Error()))
		return
	}

	documents := gin.H{}
	if printType == orders.PrintKOT || printType == orders.PrintBoth {
		documents["kot"] = h.printing.RenderKOT(order)
	}
	if printType == orders.PrintCustomer || printType == orders.PrintBoth {
		documents["customer_bill"] = h.printing.RenderCustomerBill(order)
	}

	c.JSON(http.StatusOK, successResponse("Printed", gin.H{
		"order":     order,
		"documents": documents,
	}))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrTableOutOfRange), errors.Is(err, orders.ErrItemNotInOrder), errors.Is(err, orders.ErrNothingToPrint):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrNoTableSelected), errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidServiceRate), errors.Is(err, orders.ErrNegativeCharge),
		errors.Is(err, orders.ErrInvalidQuantity), errors.Is(err, orders.ErrInvalidPrintType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
