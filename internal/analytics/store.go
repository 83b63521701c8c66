package analytics

import (
	"context"
	"time"

	"github.com/MikeMC777/shoppulse/internal/event"
	"github.com/MikeMC777/shoppulse/internal/order"
	"github.com/MikeMC777/shoppulse/internal/product"
)

// The store surfaces the Aggregator reads from. Windows are [from, to) and
// order-side queries never include cancelled orders. The pgx repositories
// in the domain packages satisfy these.

type OrderStore interface {
	List(ctx context.Context, from, to time.Time) ([]order.Order, error)
	Summary(ctx context.Context, from, to time.Time) (order.Summary, error)
	SalesByProduct(ctx context.Context, from, to time.Time) ([]order.ProductSales, error)
	UnitsSold(ctx context.Context, productIDs []string, from, to time.Time) (map[string]int, error)
	SpendByUser(ctx context.Context, from, to time.Time) ([]order.UserSpend, error)
	CountByStatus(ctx context.Context, from, to time.Time) ([]order.StatusCount, error)
}

type ProductStore interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error)
	ListLowStock(ctx context.Context) ([]product.Product, error)
}

type UserStore interface {
	CountCustomers(ctx context.Context, since time.Time) (int, error)
}

type EventStore interface {
	ViewsByProduct(ctx context.Context, from, to time.Time) ([]event.ProductViews, error)
}
