package product

import (
	"time"

	"github.com/MikeMC777/shoppulse/internal/money"
)

// Categories is the fixed storefront category set.
var Categories = []string{
	"Produce",
	"Dairy & Eggs",
	"Meat & Protein",
	"Bakery",
	"Pantry",
	"Snacks",
	"Beverages",
	"Frozen",
}

type Product struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	Category          string      `json:"category"`
	ImageURL          string      `json:"imageUrl,omitempty"`
	Price             money.Cents `json:"price"`
	StockQty          int         `json:"stockQty"`
	LowStockThreshold int         `json:"lowStockThreshold"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// LowStock reports stock at or below the product's threshold.
func (p Product) LowStock() bool { return p.StockQty <= p.LowStockThreshold }
