// Package analytics computes the admin dashboard report from orders,
// products, users and tracking events.
package analytics

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/shoppulse/internal/event"
	"github.com/MikeMC777/shoppulse/internal/money"
	"github.com/MikeMC777/shoppulse/internal/order"
	"github.com/MikeMC777/shoppulse/internal/product"
	"github.com/MikeMC777/shoppulse/internal/user"
)

// ErrReportUnavailable wraps every store failure. Reports are never partial.
var ErrReportUnavailable = errors.New("report unavailable")

// Reporter produces a report for the reference time now. Implementations
// that cache may return a report generated for an earlier now.
type Reporter interface {
	ComputeReport(ctx context.Context, now time.Time) (*Report, error)
}

type Options struct {
	// Location defines calendar days. Defaults to time.Local.
	Location *time.Location
	// Timeout bounds the whole report. Zero means no bound beyond ctx.
	Timeout time.Duration
	// Concurrency caps in-flight store queries. Defaults to 4.
	Concurrency int
}

type Aggregator struct {
	orders   OrderStore
	products ProductStore
	users    UserStore
	events   EventStore

	loc         *time.Location
	timeout     time.Duration
	concurrency int
	tracer      trace.Tracer
}

func NewAggregator(orders OrderStore, products ProductStore, users UserStore, events EventStore, opts Options) *Aggregator {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Aggregator{
		orders:      orders,
		products:    products,
		users:       users,
		events:      events,
		loc:         opts.Location,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		tracer:      otel.Tracer("github.com/MikeMC777/shoppulse/internal/analytics"),
	}
}

func (a *Aggregator) ComputeReport(ctx context.Context, now time.Time) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "analytics.ComputeReport",
		trace.WithAttributes(attribute.String("report.now", now.Format(time.RFC3339))))
	defer span.End()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	rep, err := a.compute(ctx, NewWindows(now, a.loc))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrReportUnavailable.Error())
		log.Printf("[analytics] report failed dur=%s err=%v", time.Since(start), err)
		return nil, fmt.Errorf("%w: %w", ErrReportUnavailable, err)
	}
	log.Printf("[analytics] report ok dur=%s", time.Since(start))
	return rep, nil
}

// snapshot holds the raw query results of one report. Each field is
// written by exactly one goroutine.
type snapshot struct {
	today, lastWeekSameDay, last7, last30, prior order.Summary

	dailyOrders []order.Order
	sales       []order.ProductSales
	views       []event.ProductViews
	spend       []order.UserSpend
	statuses    []order.StatusCount
	lowStock    []product.Product

	totalCustomers int
	newCustomers   int

	products    map[string]product.Product
	recentUnits map[string]int
}

func (a *Aggregator) compute(ctx context.Context, w Windows) (*Report, error) {
	var s snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	summary := func(dst *order.Summary, win Window) func() error {
		return func() (err error) {
			*dst, err = a.orders.Summary(gctx, win.Start, win.End)
			return err
		}
	}
	g.Go(summary(&s.today, w.Today))
	g.Go(summary(&s.lastWeekSameDay, w.LastWeekSameDay))
	g.Go(summary(&s.last7, w.Last7Days))
	g.Go(summary(&s.last30, w.Last30Days))
	g.Go(summary(&s.prior, w.PriorPeriod))
	g.Go(func() (err error) {
		daily := w.Daily()
		s.dailyOrders, err = a.orders.List(gctx, daily.Start, daily.End)
		return err
	})
	g.Go(func() (err error) {
		s.sales, err = a.orders.SalesByProduct(gctx, w.Last30Days.Start, w.Last30Days.End)
		return err
	})
	g.Go(func() (err error) {
		s.views, err = a.events.ViewsByProduct(gctx, w.Last30Days.Start, w.Last30Days.End)
		return err
	})
	g.Go(func() (err error) {
		s.spend, err = a.orders.SpendByUser(gctx, w.Last30Days.Start, w.Last30Days.End)
		return err
	})
	g.Go(func() (err error) {
		s.statuses, err = a.orders.CountByStatus(gctx, w.Last30Days.Start, w.Last30Days.End)
		return err
	})
	g.Go(func() (err error) {
		s.totalCustomers, err = a.users.CountCustomers(gctx, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		s.newCustomers, err = a.users.CountCustomers(gctx, w.Last30Days.Start)
		return err
	})
	g.Go(func() (err error) {
		s.lowStock, err = a.products.ListLowStock(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Second pass: hydrate products and look up recent sales of low-stock
	// items, each as one batched query.
	hydrate := productIDs(s.sales, flaggedViews(s.views, unitsByProduct(s.sales)))
	lowIDs := make([]string, 0, len(s.lowStock))
	for _, p := range s.lowStock {
		lowIDs = append(lowIDs, p.ID)
	}

	hg, hctx := errgroup.WithContext(ctx)
	hg.Go(func() (err error) {
		s.products, err = a.products.GetByIDs(hctx, hydrate)
		return err
	})
	hg.Go(func() (err error) {
		s.recentUnits, err = a.orders.UnitsSold(hctx, lowIDs, w.Last14Days.Start, w.Last14Days.End)
		return err
	})
	if err := hg.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:    w.Now,
		Sales:          buildSales(&s, w),
		Products:       buildProducts(&s),
		Customers:      buildCustomers(&s),
		Inventory:      buildInventory(&s),
		OrdersByStatus: buildStatuses(s.statuses),
	}, nil
}

func unitsByProduct(sales []order.ProductSales) map[string]int {
	out := make(map[string]int, len(sales))
	for _, ps := range sales {
		out[ps.ProductID] += ps.Units
	}
	return out
}

func flaggedViews(views []event.ProductViews, units map[string]int) []event.ProductViews {
	var out []event.ProductViews
	for _, v := range views {
		if lowConversion(v.Views, units[v.ProductID]) {
			out = append(out, v)
		}
	}
	return out
}

func productIDs(sales []order.ProductSales, flagged []event.ProductViews) []string {
	seen := make(map[string]struct{}, len(sales)+len(flagged))
	ids := make([]string, 0, len(sales)+len(flagged))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, ps := range sales {
		add(ps.ProductID)
	}
	for _, v := range flagged {
		add(v.ProductID)
	}
	slices.Sort(ids)
	return ids
}

func buildSales(s *snapshot, w Windows) Sales {
	out := Sales{
		RevenueToday:           s.today.Revenue,
		RevenueLast7Days:       s.last7.Revenue,
		RevenueLast30Days:      s.last30.Revenue,
		RevenueLastMonth:       s.prior.Revenue,
		RevenueLastWeekSameDay: s.lastWeekSameDay.Revenue,
		OrdersToday:            s.today.Orders,
		OrdersLast7Days:        s.last7.Orders,
		OrdersLast30Days:       s.last30.Orders,
		OrdersLastWeekSameDay:  s.lastWeekSameDay.Orders,
		OrdersLastMonth:        s.prior.Orders,
		AOV7Days:               averageOrderValue(s.last7),
		AOV30Days:              averageOrderValue(s.last30),
		DailySales:             make([]DailySales, len(w.Days)),
	}
	for i, d := range w.Days {
		out.DailySales[i].Date = d.Start.Format(dateLayout)
	}
	for _, o := range s.dailyOrders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for i, d := range w.Days {
			if d.Contains(o.CreatedAt) {
				out.DailySales[i].Revenue += o.Total
				out.DailySales[i].Orders++
				break
			}
		}
	}
	return out
}

func buildProducts(s *snapshot) Products {
	rank := func(sales []order.ProductSales) []ProductRank {
		out := make([]ProductRank, 0, len(sales))
		for _, ps := range sales {
			r := ProductRank{Revenue: ps.Revenue, UnitsSold: ps.Units}
			if p, ok := s.products[ps.ProductID]; ok {
				r.Product = &p
			}
			out = append(out, r)
		}
		return out
	}

	out := Products{
		TopByRevenue:        rank(topProducts(s.sales, byRevenue)),
		TopByUnits:          rank(topProducts(s.sales, byUnits)),
		HighViewLowPurchase: make([]ViewConversion, 0),
		CategoryBreakdown:   make([]CategoryRevenue, 0),
	}

	units := unitsByProduct(s.sales)
	for _, v := range flaggedViews(s.views, units) {
		p, ok := s.products[v.ProductID]
		if !ok {
			continue
		}
		purchases := units[v.ProductID]
		out.HighViewLowPurchase = append(out.HighViewLowPurchase, ViewConversion{
			Product:        p,
			Views:          v.Views,
			Purchases:      purchases,
			ConversionRate: conversionRate(purchases, v.Views),
		})
	}
	slices.SortFunc(out.HighViewLowPurchase, func(a, b ViewConversion) int {
		if c := cmp.Compare(b.Views, a.Views); c != 0 {
			return c
		}
		return cmp.Compare(a.Product.ID, b.Product.ID)
	})

	byCategory := make(map[string]money.Cents)
	for _, ps := range s.sales {
		p, ok := s.products[ps.ProductID]
		if !ok {
			continue
		}
		byCategory[p.Category] += ps.Revenue
	}
	for c, rev := range byCategory {
		out.CategoryBreakdown = append(out.CategoryBreakdown, CategoryRevenue{Category: c, Revenue: rev})
	}
	slices.SortFunc(out.CategoryBreakdown, func(a, b CategoryRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

func buildCustomers(s *snapshot) Customers {
	out := Customers{
		Total:      s.totalCustomers,
		New:        s.newCustomers,
		TopBySpend: make([]CustomerSpend, 0),
	}
	for _, us := range s.spend {
		if us.Role == string(user.RoleCustomer) && us.Orders >= 2 {
			out.Returning++
		}
	}
	out.Returning = min(out.Returning, out.Total)
	out.RepeatPurchaseRate = repeatPurchaseRate(out.Returning, out.Total)

	for _, us := range topSpenders(s.spend) {
		out.TopBySpend = append(out.TopBySpend, CustomerSpend{
			User:       CustomerRef{ID: us.UserID, Name: us.Name, Email: us.Email},
			TotalSpend: us.Spend,
		})
	}
	return out
}

func buildInventory(s *snapshot) Inventory {
	out := Inventory{
		LowStock:           make([]product.Product, 0, len(s.lowStock)),
		RestockSuggestions: make([]RestockSuggestion, 0),
	}
	for _, p := range s.lowStock {
		if p.LowStock() {
			out.LowStock = append(out.LowStock, p)
		}
	}
	slices.SortFunc(out.LowStock, func(a, b product.Product) int {
		if c := cmp.Compare(a.StockQty, b.StockQty); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for _, p := range out.LowStock {
		sold := s.recentUnits[p.ID]
		n, ok := suggestRestock(sold, p.LowStockThreshold)
		if !ok {
			continue
		}
		out.RestockSuggestions = append(out.RestockSuggestions, RestockSuggestion{
			Product:          p,
			CurrentStock:     p.StockQty,
			SoldLast14Days:   sold,
			SuggestedRestock: n,
		})
	}
	return out
}

// buildStatuses keeps the store's exclusion of cancelled orders, so the
// cancelled bucket never appears.
func buildStatuses(counts []order.StatusCount) []StatusCount {
	sorted := slices.Clone(counts)
	slices.SortFunc(sorted, func(a, b order.StatusCount) int {
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	})
	out := make([]StatusCount, 0, len(sorted))
	for _, sc := range sorted {
		if sc.Status == order.StatusCancelled {
			continue
		}
		out = append(out, StatusCount{Status: sc.Status.Label(), Count: sc.Count})
	}
	return out
}
