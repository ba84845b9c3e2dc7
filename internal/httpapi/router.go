// Package httpapi exposes the shop over JSON/HTTP with gin.
package httpapi

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/pricing"
	"github.com/safar/go-sql-shop/internal/shop"
	"github.com/safar/go-sql-shop/internal/store"
)

type Catalog interface {
	ListItems(ctx context.Context, search, ordering string, page, pageSize int) (*store.OffsetPage, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, in shop.ItemInput) (*models.Item, error)
	ReplaceItem(ctx context.Context, id int64, in shop.ItemInput) (*models.Item, error)
	PatchItem(ctx context.Context, id int64, patch shop.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, in shop.CategoryInput) (*models.Category, error)
	ReplaceCategory(ctx context.Context, id int64, in shop.CategoryInput) (*models.Category, error)
	PatchCategory(ctx context.Context, id int64, patch shop.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type Wishlists interface {
	Get(ctx context.Context, owner int64) (*models.Wishlist, error)
	Upsert(ctx context.Context, owner int64, items []int64) (*models.Wishlist, bool, error)
	AddItems(ctx context.Context, owner int64, items []int64) (*models.Wishlist, error)
	RemoveItems(ctx context.Context, owner int64, items []int64) (*models.Wishlist, error)
}

type Carts interface {
	GetDetail(ctx context.Context, owner int64) (*models.Cart, error)
	CreateOrReplace(ctx context.Context, owner int64, lines []pricing.LineRequest) (*models.Cart, bool, error)
}

type Orders interface {
	PlaceFromCart(ctx context.Context, owner int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID, requester int64, status string) (*models.Order, error)
	Get(ctx context.Context, orderID, requester int64) (*models.Order, error)
	List(ctx context.Context, owner int64, cursor string, limit int) (*store.CursorPage, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Catalog   Catalog
	Wishlists Wishlists
	Carts     Carts
	Orders    Orders
	Tokens    TokenVerifier
	DB        Pinger
	Logger    *zap.Logger

	AllowOrigins []string
}

type handler struct {
	Deps
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report JSON names instead of Go
// struct field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	useJSONFieldNames()

	r := gin.New()
	r.Use(RequestID(), AccessLog(deps.Logger), Recovery(deps.Logger), CORS(deps.AllowOrigins))
	r.NoRoute(notFound)

	h := &handler{Deps: deps}

	r.GET("/healthz", h.health)

	items := r.Group("/items")
	{
		items.GET("/", h.listItems)
		items.POST("/", h.createItem)
		items.GET("/:id", h.getItem)
		items.PUT("/:id", h.replaceItem)
		items.PATCH("/:id", h.patchItem)
		items.DELETE("/:id", h.deleteItem)
	}

	categories := r.Group("/categories")
	{
		categories.GET("/", h.listCategories)
		categories.POST("/", h.createCategory)
		categories.GET("/:id", h.getCategory)
		categories.PUT("/:id", h.replaceCategory)
		categories.PATCH("/:id", h.patchCategory)
		categories.DELETE("/:id", h.deleteCategory)
	}

	auth := r.Group("/")
	auth.Use(Authenticate(deps.Tokens, deps.Logger))
	{
		auth.GET("/wishlist/", h.getWishlist)
		auth.POST("/wishlist/", h.upsertWishlist)
		auth.PUT("/wishlist/", h.addWishlistItems)
		auth.DELETE("/wishlist/", h.removeWishlistItems)

		auth.GET("/cart/", h.getCart)
		auth.POST("/cart/", h.saveCart)
		auth.PUT("/cart/", h.saveCart)

		auth.GET("/order/", h.listOrders)
		auth.POST("/order/", h.placeOrder)
		auth.GET("/order/:id", h.getOrder)
		auth.PUT("/order/:id", h.updateOrderStatus)
		auth.PATCH("/order/:id", h.updateOrderStatus)
	}

	return r
}

func (h *handler) health(c *gin.Context) {
	if h.DB != nil {
		if err := h.DB.PingContext(c.Request.Context()); err != nil {
			h.Logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) fail(c *gin.Context, err error) {
	abortWithError(c, h.Logger, err)
}

// pathID parses the :id parameter; a non-numeric id is a missing route.
func pathID(c *gin.Context) (int64, bool) {
	id, err := parseInt64(c.Param("id"))
	if err != nil || id < 1 {
		notFound(c)
		return 0, false
	}
	return id, true
}
