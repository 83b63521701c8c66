package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MikeMC777/shoppulse/internal/event"
	"github.com/MikeMC777/shoppulse/internal/money"
	"github.com/MikeMC777/shoppulse/internal/order"
	"github.com/MikeMC777/shoppulse/internal/product"
	"github.com/MikeMC777/shoppulse/internal/user"
)

var errStoreDown = errors.New("store down")

// memStore implements every store interface over plain slices, with the
// same window and cancelled-order rules as the SQL.
type memStore struct {
	orders   []order.Order
	items    []order.Item
	products map[string]product.Product
	users    []user.User
	events   []event.Event

	failOn string
	block  bool

	mu    sync.Mutex
	calls map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]product.Product),
		calls:    make(map[string]int),
	}
}

func (m *memStore) enter(ctx context.Context, name string) error {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.failOn == name {
		return fmt.Errorf("%s: %w", name, errStoreDown)
	}
	return ctx.Err()
}

func (m *memStore) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

type line struct {
	productID string
	qty       int
	price     money.Cents
}

func (m *memStore) addProduct(p product.Product) {
	m.products[p.ID] = p
}

func (m *memStore) addUser(id string, role user.Role, created time.Time) {
	m.users = append(m.users, user.User{
		ID: id, Name: "Name " + id, Email: id + "@example.com", Role: role, CreatedAt: created,
	})
}

// addOrder stores an order whose total is the sum of its lines.
func (m *memStore) addOrder(userID string, status order.Status, at time.Time, lines ...line) order.Order {
	o := order.Order{
		ID:        fmt.Sprintf("o%03d", len(m.orders)+1),
		UserID:    userID,
		Status:    status,
		CreatedAt: at,
	}
	for i, l := range lines {
		o.Total += l.price.Mul(l.qty)
		m.items = append(m.items, order.Item{
			ID:              fmt.Sprintf("%s-%d", o.ID, i),
			OrderID:         o.ID,
			ProductID:       l.productID,
			Quantity:        l.qty,
			PriceAtPurchase: l.price,
		})
	}
	m.orders = append(m.orders, o)
	return o
}

// addTotal stores an order with a single line worth total.
func (m *memStore) addTotal(userID string, status order.Status, at time.Time, total money.Cents) order.Order {
	return m.addOrder(userID, status, at, line{productID: "p-misc", qty: 1, price: total})
}

func (m *memStore) addViews(productID string, n int, at time.Time) {
	for i := 0; i < n; i++ {
		m.events = append(m.events, event.Event{
			ID:        fmt.Sprintf("e%d", len(m.events)+1),
			Type:      event.TypeProductView,
			ProductID: productID,
			CreatedAt: at,
		})
	}
}

func (m *memStore) live(from, to time.Time) []order.Order {
	w := Window{Start: from, End: to}
	var out []order.Order
	for _, o := range m.orders {
		if o.Status != order.StatusCancelled && w.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out
}

func (m *memStore) liveItems(from, to time.Time) []order.Item {
	ids := make(map[string]bool)
	for _, o := range m.live(from, to) {
		ids[o.ID] = true
	}
	var out []order.Item
	for _, it := range m.items {
		if ids[it.OrderID] {
			out = append(out, it)
		}
	}
	return out
}

func (m *memStore) List(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	if err := m.enter(ctx, "List"); err != nil {
		return nil, err
	}
	return m.live(from, to), nil
}

func (m *memStore) Summary(ctx context.Context, from, to time.Time) (order.Summary, error) {
	if err := m.enter(ctx, "Summary"); err != nil {
		return order.Summary{}, err
	}
	var s order.Summary
	for _, o := range m.live(from, to) {
		s.Revenue += o.Total
		s.Orders++
	}
	return s, nil
}

func (m *memStore) SalesByProduct(ctx context.Context, from, to time.Time) ([]order.ProductSales, error) {
	if err := m.enter(ctx, "SalesByProduct"); err != nil {
		return nil, err
	}
	idx := make(map[string]int)
	var out []order.ProductSales
	for _, it := range m.liveItems(from, to) {
		i, ok := idx[it.ProductID]
		if !ok {
			i = len(out)
			idx[it.ProductID] = i
			out = append(out, order.ProductSales{ProductID: it.ProductID})
		}
		out[i].Revenue += it.PriceAtPurchase.Mul(it.Quantity)
		out[i].Units += it.Quantity
	}
	return out, nil
}

func (m *memStore) UnitsSold(ctx context.Context, productIDs []string, from, to time.Time) (map[string]int, error) {
	if err := m.enter(ctx, "UnitsSold"); err != nil {
		return nil, err
	}
	want := make(map[string]bool)
	for _, id := range productIDs {
		want[id] = true
	}
	out := make(map[string]int)
	for _, it := range m.liveItems(from, to) {
		if want[it.ProductID] {
			out[it.ProductID] += it.Quantity
		}
	}
	return out, nil
}

func (m *memStore) SpendByUser(ctx context.Context, from, to time.Time) ([]order.UserSpend, error) {
	if err := m.enter(ctx, "SpendByUser"); err != nil {
		return nil, err
	}
	idx := make(map[string]int)
	var out []order.UserSpend
	for _, o := range m.live(from, to) {
		i, ok := idx[o.UserID]
		if !ok {
			i = len(out)
			idx[o.UserID] = i
			us := order.UserSpend{UserID: o.UserID}
			for _, u := range m.users {
				if u.ID == o.UserID {
					us.Name, us.Email, us.Role = u.Name, u.Email, string(u.Role)
				}
			}
			out = append(out, us)
		}
		out[i].Spend += o.Total
		out[i].Orders++
	}
	return out, nil
}

func (m *memStore) CountByStatus(ctx context.Context, from, to time.Time) ([]order.StatusCount, error) {
	if err := m.enter(ctx, "CountByStatus"); err != nil {
		return nil, err
	}
	counts := make(map[order.Status]int)
	for _, o := range m.live(from, to) {
		counts[o.Status]++
	}
	var out []order.StatusCount
	for st, n := range counts {
		out = append(out, order.StatusCount{Status: st, Count: n})
	}
	return out, nil
}

func (m *memStore) GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error) {
	if err := m.enter(ctx, "GetByIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]product.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memStore) ListLowStock(ctx context.Context) ([]product.Product, error) {
	if err := m.enter(ctx, "ListLowStock"); err != nil {
		return nil, err
	}
	var out []product.Product
	for _, p := range m.products {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CountCustomers(ctx context.Context, since time.Time) (int, error) {
	if err := m.enter(ctx, "CountCustomers"); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range m.users {
		if u.Role == user.RoleCustomer && !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ViewsByProduct(ctx context.Context, from, to time.Time) ([]event.ProductViews, error) {
	if err := m.enter(ctx, "ViewsByProduct"); err != nil {
		return nil, err
	}
	w := Window{Start: from, End: to}
	idx := make(map[string]int)
	var out []event.ProductViews
	for _, e := range m.events {
		if e.Type != event.TypeProductView || e.ProductID == "" || !w.Contains(e.CreatedAt) {
			continue
		}
		i, ok := idx[e.ProductID]
		if !ok {
			i = len(out)
			idx[e.ProductID] = i
			out = append(out, event.ProductViews{ProductID: e.ProductID})
		}
		out[i].Views++
	}
	return out, nil
}
