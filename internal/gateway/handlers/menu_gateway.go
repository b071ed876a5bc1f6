package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"annapurna-pos/internal/services/menu"
)

type MenuHTTPHandler struct {
	menu *menu.Service
}

func NewMenuHTTPHandler(menuSvc *menu.Service) *MenuHTTPHandler {
	return &MenuHTTPHandler{menu: menuSvc}
}

func (h *MenuHTTPHandler) CreateItem(c *gin.Context) {
	var req menu.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	item, err := h.menu.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(menuStatusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, successResponse("Menu item created", item))
}

func (h *MenuHTTPHandler) ListItems(c *gin.Context) {
	items, err := h.menu.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Menu items", items))
}

func (h *MenuHTTPHandler) GetItem(c *gin.Context) {
	item, err := h.menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Menu item", item))
}

func (h *MenuHTTPHandler) UpdateItem(c *gin.Context) {
	var req menu.ItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.menu.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(menuStatusFor(err), errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Menu item updated", nil))
}

func (h *MenuHTTPHandler) DeleteItem(c *gin.Context) {
	if err := h.menu.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Menu item deleted", nil))
}

func (h *MenuHTTPHandler) ListCategories(c *gin.Context) {
	categories, err := h.menu.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("Categories", categories))
}

func menuStatusFor(err error) int {
	if errors.Is(err, menu.ErrPriceTooHigh) || errors.Is(err, menu.ErrNegativePrice) || errors.Is(err, menu.ErrEmptyName) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
