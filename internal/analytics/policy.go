package analytics

import (
	"cmp"
	"slices"

	"github.com/MikeMC777/shoppulse/internal/money"
	"github.com/MikeMC777/shoppulse/internal/order"
)

const (
	topLimit = 10

	// A product needs more than minViews views before its conversion is judged,
	// and is flagged when purchases fall below 1/lowConversionDivisor of views.
	minViews             = 10
	lowConversionDivisor = 10

	restockFactor = 2
)

func averageOrderValue(s order.Summary) money.Cents {
	return s.Revenue.DivRound(s.Orders)
}

func lowConversion(views, purchases int) bool {
	return views > minViews && purchases*lowConversionDivisor < views
}

func conversionRate(purchases, views int) float64 {
	if views <= 0 {
		return 0
	}
	return float64(purchases) / float64(views) * 100
}

// suggestRestock returns max(2*sold, 2*threshold). Nothing is suggested for
// products that did not sell in the lookback window.
func suggestRestock(sold, threshold int) (int, bool) {
	if sold <= 0 {
		return 0, false
	}
	return max(sold*restockFactor, threshold*restockFactor), true
}

func repeatPurchaseRate(returning, total int) float64 {
	if total <= 0 || returning <= 0 {
		return 0
	}
	rate := float64(returning) / float64(total) * 100
	return min(rate, 100)
}

// topProducts orders by key descending, ties by product id, and keeps topLimit.
func topProducts(sales []order.ProductSales, key func(order.ProductSales) int64) []order.ProductSales {
	out := slices.Clone(sales)
	slices.SortFunc(out, func(a, b order.ProductSales) int {
		if c := cmp.Compare(key(b), key(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}

func byRevenue(s order.ProductSales) int64 { return int64(s.Revenue) }
func byUnits(s order.ProductSales) int64   { return int64(s.Units) }

func topSpenders(spend []order.UserSpend) []order.UserSpend {
	out := slices.Clone(spend)
	slices.SortFunc(out, func(a, b order.UserSpend) int {
		if c := cmp.Compare(b.Spend, a.Spend); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}
