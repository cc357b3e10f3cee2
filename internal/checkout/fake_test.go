package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type cartKey struct {
	user, product, location int64
}

type memProduct struct {
	name  string
	price decimal.Decimal
}

// memBackend is a non-transactional in-memory Backend.
type memBackend struct {
	mu       sync.Mutex
	products map[int64]memProduct
	cart     map[cartKey]int
	added    map[cartKey]int
	seq      int
	orders   []models.Order
	nextID   int64
	fail     map[string]error
	// afterInsertOrder runs with mu held, after the order header is stored.
	afterInsertOrder func()
}

func newMemBackend() *memBackend {
	return &memBackend{
		products: map[int64]memProduct{},
		cart:     map[cartKey]int{},
		added:    map[cartKey]int{},
		fail:     map[string]error{},
		nextID:   1,
	}
}

func (m *memBackend) addProduct(id int64, name, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = memProduct{name: name, price: decimal.RequireFromString(price)}
}

func (m *memBackend) failOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

func (m *memBackend) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.fail[op]
}

func (m *memBackend) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memBackend) cartSize(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.cart {
		if k.user == userID {
			n++
		}
	}
	return n
}

func (m *memBackend) CartItems(ctx context.Context, userID int64, lang string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "CartItems"); err != nil {
		return nil, err
	}

	var lines []models.CartLine
	for k, qty := range m.cart {
		if k.user != userID {
			continue
		}
		p := m.products[k.product]
		lines = append(lines, models.CartLine{
			UserID:     k.user,
			ProductID:  k.product,
			LocationID: k.location,
			Quantity:   qty,
			Name:       p.name,
			Price:      p.price,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return m.added[cartKey{userID, lines[i].ProductID, lines[i].LocationID}] <
			m.added[cartKey{userID, lines[j].ProductID, lines[j].LocationID}]
	})
	return lines, nil
}

func (m *memBackend) FindCartLine(ctx context.Context, userID, productID, locationID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "FindCartLine"); err != nil {
		return 0, false, err
	}
	qty, ok := m.cart[cartKey{userID, productID, locationID}]
	return qty, ok, nil
}

func (m *memBackend) InsertCartLine(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "InsertCartLine"); err != nil {
		return err
	}
	if _, ok := m.products[productID]; !ok {
		return ErrUnknownProductOrLocation
	}
	k := cartKey{userID, productID, locationID}
	m.cart[k] += quantity
	m.seq++
	m.added[k] = m.seq
	return nil
}

func (m *memBackend) UpdateCartLineQuantity(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "UpdateCartLineQuantity"); err != nil {
		return err
	}
	k := cartKey{userID, productID, locationID}
	if _, ok := m.cart[k]; !ok {
		return ErrCartLineNotFound
	}
	m.cart[k] = quantity
	return nil
}

func (m *memBackend) DeleteCartLine(ctx context.Context, userID, productID, locationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "DeleteCartLine"); err != nil {
		return err
	}
	k := cartKey{userID, productID, locationID}
	if _, ok := m.cart[k]; !ok {
		return ErrCartLineNotFound
	}
	delete(m.cart, k)
	return nil
}

func (m *memBackend) DeleteCartLines(ctx context.Context, userID int64, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "DeleteCartLines"); err != nil {
		return err
	}
	for _, line := range lines {
		delete(m.cart, cartKey{userID, line.ProductID, line.LocationID})
	}
	return nil
}

func (m *memBackend) InsertOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "InsertOrder"); err != nil {
		return err
	}
	order.ID = m.nextID
	m.nextID++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Items = nil
	m.orders = append(m.orders, stored)
	if m.afterInsertOrder != nil {
		m.afterInsertOrder()
	}
	return nil
}

func (m *memBackend) InsertOrderLines(ctx context.Context, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "InsertOrderLines"); err != nil {
		return err
	}
	for _, item := range items {
		for i := range m.orders {
			if m.orders[i].ID == item.OrderID {
				m.orders[i].Items = append(m.orders[i].Items, item)
			}
		}
	}
	return nil
}

func (m *memBackend) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "ListOrders"); err != nil {
		return nil, err
	}
	var out []models.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			o := m.orders[i]
			o.Items = append([]models.OrderItem(nil), o.Items...)
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memBackend) snapshot() (map[cartKey]int, []models.Order, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart := make(map[cartKey]int, len(m.cart))
	for k, v := range m.cart {
		cart[k] = v
	}
	orders := make([]models.Order, len(m.orders))
	for i, o := range m.orders {
		o.Items = append([]models.OrderItem(nil), o.Items...)
		orders[i] = o
	}
	return cart, orders, m.nextID
}

func (m *memBackend) restore(cart map[cartKey]int, orders []models.Order, nextID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart, m.orders, m.nextID = cart, orders, nextID
}

// txBackend adds all-or-nothing transactions on top of memBackend.
type txBackend struct {
	*memBackend
	txMu sync.Mutex
}

func newTxBackend() *txBackend {
	return &txBackend{memBackend: newMemBackend()}
}

func (t *txBackend) WithinTx(ctx context.Context, fn func(Backend) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	cart, orders, nextID := t.snapshot()
	if err := fn(t.memBackend); err != nil {
		t.restore(cart, orders, nextID)
		return err
	}
	return nil
}

// countingLocker records how often Lock was called.
type countingLocker struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return func() {}, nil
}
