package analytics

import (
	"time"

	"github.com/MikeMC777/shoppulse/internal/money"
	"github.com/MikeMC777/shoppulse/internal/product"
)

// Report is the admin dashboard payload.
// swagger:model Report
type Report struct {
	GeneratedAt    time.Time     `json:"generatedAt"`
	Sales          Sales         `json:"sales"`
	Products       Products      `json:"products"`
	Customers      Customers     `json:"customers"`
	Inventory      Inventory     `json:"inventory"`
	OrdersByStatus []StatusCount `json:"ordersByStatus"`
}

type Sales struct {
	RevenueToday           money.Cents `json:"revenueToday"`
	RevenueLast7Days       money.Cents `json:"revenueLast7Days"`
	RevenueLast30Days      money.Cents `json:"revenueLast30Days"`
	RevenueLastMonth       money.Cents `json:"revenueLastMonth"`
	RevenueLastWeekSameDay money.Cents `json:"revenueLastWeekSameDay"`

	OrdersToday           int `json:"ordersToday"`
	OrdersLast7Days       int `json:"ordersLast7Days"`
	OrdersLast30Days      int `json:"ordersLast30Days"`
	OrdersLastWeekSameDay int `json:"ordersLastWeekSameDay"`
	OrdersLastMonth       int `json:"ordersLastMonth"`

	AOV7Days  money.Cents `json:"aov7Days"`
	AOV30Days money.Cents `json:"aov30Days"`

	DailySales []DailySales `json:"dailySales"`
}

type DailySales struct {
	Date    string      `json:"date"`
	Revenue money.Cents `json:"revenue"`
	Orders  int         `json:"orders"`
}

type Products struct {
	TopByRevenue        []ProductRank     `json:"topByRevenue"`
	TopByUnits          []ProductRank     `json:"topByUnits"`
	HighViewLowPurchase []ViewConversion  `json:"highViewLowPurchase"`
	CategoryBreakdown   []CategoryRevenue `json:"categoryBreakdown"`
}

// ProductRank is one row of a top-products list. Product is nil when the
// product was deleted after it was sold.
type ProductRank struct {
	Product   *product.Product `json:"product"`
	Revenue   money.Cents      `json:"revenue"`
	UnitsSold int              `json:"unitsSold"`
}

type ViewConversion struct {
	Product        product.Product `json:"product"`
	Views          int             `json:"views"`
	Purchases      int             `json:"purchases"`
	ConversionRate float64         `json:"conversionRate"`
}

type CategoryRevenue struct {
	Category string      `json:"category"`
	Revenue  money.Cents `json:"revenue"`
}

type Customers struct {
	Total              int             `json:"total"`
	New                int             `json:"new"`
	Returning          int             `json:"returning"`
	RepeatPurchaseRate float64         `json:"repeatPurchaseRate"`
	TopBySpend         []CustomerSpend `json:"topBySpend"`
}

type CustomerSpend struct {
	User       CustomerRef `json:"user"`
	TotalSpend money.Cents `json:"totalSpend"`
}

type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Inventory struct {
	LowStock           []product.Product   `json:"lowStock"`
	RestockSuggestions []RestockSuggestion `json:"restockSuggestions"`
}

type RestockSuggestion struct {
	Product          product.Product `json:"product"`
	CurrentStock     int             `json:"currentStock"`
	SoldLast14Days   int             `json:"soldLast14Days"`
	SuggestedRestock int             `json:"suggestedRestock"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
