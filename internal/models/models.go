package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Item struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TargetGender string          `json:"target_gender"`
	Quantity     int             `json:"qty"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Items     []int64   `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Wishlist struct {
	ID          int64     `json:"id"`
	Owner       int64     `json:"owner"`
	Items       []int64   `json:"items"`
	LastUpdated time.Time `json:"last_updated"`
}

// LineItem is one (item, quantity) join row of a cart or an order.
type LineItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type Cart struct {
	ID         int64           `json:"id"`
	Owner      int64           `json:"owner"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []LineItem      `json:"items"`
}

type Order struct {
	ID          int64           `json:"id"`
	Owner       int64           `json:"owner"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      string          `json:"status"`
	OrderedAt   time.Time       `json:"ordered_at"`
	LastUpdated time.Time       `json:"last_updated"`
	Version     int             `json:"version"`
	Items       []LineItem      `json:"items"`
}

// Order statuses. Only OrderStatusPlaced is assigned by the system; owners
// may move an order to any non-empty status up to MaxOrderStatusLength.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	MaxOrderStatusLength = 50
)

const (
	MaxItemTitleLength       = 200
	MaxItemDescriptionLength = 1000
	MaxTargetGenderLength    = 50
	MaxCategoryNameLength    = 200
)

// MaxMoneyAmount is the largest value a NUMERIC(9, 2) price or total holds.
var MaxMoneyAmount = decimal.New(999999999, -2)
