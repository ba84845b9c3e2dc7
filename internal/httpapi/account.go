package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safar/go-sql-shop/internal/pricing"
)

type wishlistRequest struct {
	Items []int64 `json:"items" binding:"required"`
}

type cartLineRequest struct {
	ItemID   *int64 `json:"item_id" binding:"required"`
	Quantity *int   `json:"quantity"`
}

type cartRequest struct {
	Items []cartLineRequest `json:"items" binding:"required,dive"`
}

// lines defaults an omitted quantity to 1.
func (r cartRequest) lines() []pricing.LineRequest {
	lines := make([]pricing.LineRequest, 0, len(r.Items))
	for _, item := range r.Items {
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		lines = append(lines, pricing.LineRequest{ItemID: *item.ItemID, Quantity: qty})
	}
	return lines
}

type statusRequest struct {
	Status *string `json:"status"`
}

func (h *handler) getWishlist(c *gin.Context) {
	wishlist, err := h.Wishlists.Get(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// POST /wishlist/ sets the wishlist to exactly the given items.
func (h *handler) upsertWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	wishlist, created, err := h.Wishlists.Upsert(c.Request.Context(), CurrentUserID(c), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, wishlist)
}

func (h *handler) addWishlistItems(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	wishlist, err := h.Wishlists.AddItems(c.Request.Context(), CurrentUserID(c), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

func (h *handler) removeWishlistItems(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	wishlist, err := h.Wishlists.RemoveItems(c.Request.Context(), CurrentUserID(c), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

func (h *handler) getCart(c *gin.Context) {
	cart, err := h.Carts.GetDetail(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// POST and PUT /cart/ both replace the whole cart.
func (h *handler) saveCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	cart, created, err := h.Carts.CreateOrReplace(c.Request.Context(), CurrentUserID(c), req.lines())
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cart)
}

// GET /order/?cursor=&limit=
func (h *handler) listOrders(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.Orders.List(c.Request.Context(), CurrentUserID(c), c.Query("cursor"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) placeOrder(c *gin.Context) {
	order, err := h.Orders.PlaceFromCart(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.Orders.Get(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT and PATCH /order/:id only change the status; other fields are ignored.
// An empty or unreadable body counts as a missing status, which the manager
// rejects only after the ownership check.
func (h *handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	status := ""
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Status != nil {
		status = *req.Status
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), id, CurrentUserID(c), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
