package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/safar/go-sql-shop/internal/shop"
)

type itemRequest struct {
	Title        *string          `json:"title" binding:"required"`
	Description  *string          `json:"description"`
	TargetGender *string          `json:"target_gender"`
	Quantity     *int             `json:"qty" binding:"required"`
	BuyPrice     *decimal.Decimal `json:"buy_price" binding:"required"`
	SellPrice    *decimal.Decimal `json:"sell_price" binding:"required"`
}

func (r itemRequest) input() shop.ItemInput {
	in := shop.ItemInput{
		Title:     *r.Title,
		Quantity:  *r.Quantity,
		BuyPrice:  *r.BuyPrice,
		SellPrice: *r.SellPrice,
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.TargetGender != nil {
		in.TargetGender = *r.TargetGender
	}
	return in
}

type itemPatchRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	TargetGender *string          `json:"target_gender"`
	Quantity     *int             `json:"qty"`
	BuyPrice     *decimal.Decimal `json:"buy_price"`
	SellPrice    *decimal.Decimal `json:"sell_price"`
}

func (r itemPatchRequest) patch() shop.ItemPatch {
	return shop.ItemPatch{
		Title:        r.Title,
		Description:  r.Description,
		TargetGender: r.TargetGender,
		Quantity:     r.Quantity,
		BuyPrice:     r.BuyPrice,
		SellPrice:    r.SellPrice,
	}
}

type categoryRequest struct {
	Name  *string `json:"name" binding:"required"`
	Items []int64 `json:"items"`
}

type categoryPatchRequest struct {
	Name  *string  `json:"name"`
	Items *[]int64 `json:"items"`
}

// GET /items/?search=&ordering=&page=&page_size=
func (h *handler) listItems(c *gin.Context) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.Catalog.ListItems(c.Request.Context(), c.Query("search"), c.Query("ordering"), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) getItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.Catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	item, err := h.Catalog.CreateItem(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) replaceItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	item, err := h.Catalog.ReplaceItem(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) patchItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req itemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	item, err := h.Catalog.PatchItem(c.Request.Context(), id, req.patch())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Catalog.DeleteItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listCategories(c *gin.Context) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.Catalog.ListCategories(c.Request.Context(), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) getCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	category, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	category, err := h.Catalog.CreateCategory(c.Request.Context(), shop.CategoryInput{Name: *req.Name, Items: req.Items})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *handler) replaceCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	category, err := h.Catalog.ReplaceCategory(c.Request.Context(), id, shop.CategoryInput{Name: *req.Name, Items: req.Items})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) patchCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req categoryPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	category, err := h.Catalog.PatchCategory(c.Request.Context(), id, shop.CategoryPatch{Name: req.Name, Items: req.Items})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
