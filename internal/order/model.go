package order

import (
	"strings"
	"time"

	"github.com/MikeMC777/shoppulse/internal/money"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Rank is the position of s in Statuses, or len(Statuses) when unknown.
func (s Status) Rank() int {
	for i, v := range Statuses {
		if s == v {
			return i
		}
	}
	return len(Statuses)
}

// Label is the display form used by the dashboard ("Processing").
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Status    Status      `json:"status"`
	Total     money.Cents `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Item struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	ProductID       string      `json:"productId"`
	Quantity        int         `json:"qty"`
	PriceAtPurchase money.Cents `json:"priceAtPurchase"`
}

// Summary is revenue and order count over a window.
type Summary struct {
	Revenue money.Cents
	Orders  int
}

// ProductSales is order items grouped by product. Revenue is the sum of
// price_at_purchase * qty.
type ProductSales struct {
	ProductID string
	Revenue   money.Cents
	Units     int
}

// UserSpend is orders grouped by user with the user's display fields.
type UserSpend struct {
	UserID string
	Name   string
	Email  string
	Role   string
	Spend  money.Cents
	Orders int
}

type StatusCount struct {
	Status Status
	Count  int
}

// UpdateStatusRequest payload for an admin status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"shipped"`
}
