package services

import (
	"math"
	"strings"
	"sync"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

type DuplicatePolicy int

const (
	// MergeDuplicates adds the requested quantity to the existing line,
	// subject to the line's limit.
	MergeDuplicates DuplicatePolicy = iota
	RejectDuplicates
)

type CartOption func(*Cart)

func WithDuplicatePolicy(p DuplicatePolicy) CartOption {
	return func(c *Cart) { c.policy = p }
}

func WithPricing(p *PricingEngine) CartOption {
	return func(c *Cart) { c.pricing = p }
}

// Cart is a session's in-progress selection of amenities. All methods are
// safe for concurrent use; mutations are serialised on one mutex. The cached
// total is recomputed on every mutation and a mutation whose total would not
// fit in Money is rejected, so Total never has to fail.
type Cart struct {
	mu       sync.Mutex
	currency string
	items    []domain.CartLineItem
	total    domain.Money
	policy   DuplicatePolicy
	pricing  *PricingEngine
}

func NewCart(currency string, opts ...CartOption) *Cart {
	c := &Cart{currency: domain.Zero(currency).Currency()}
	c.total = domain.Zero(c.currency)
	for _, opt := range opts {
		opt(c)
	}
	if c.pricing == nil {
		c.pricing = NewPricingEngine(NewExtensionLedger(c.currency), DefaultPricingConfig())
	}
	return c
}

// RestoreCart rebuilds a cart from a stored snapshot, rejecting snapshots
// that break the line-item invariants.
func RestoreCart(s domain.CartSnapshot, opts ...CartOption) (*Cart, error) {
	c := NewCart(s.Currency, opts...)
	seen := make(map[string]struct{}, len(s.Items))
	items := make([]domain.CartLineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if _, dup := seen[it.AmenityID]; dup {
			return nil, &domain.DuplicateItemError{AmenityID: it.AmenityID}
		}
		seen[it.AmenityID] = struct{}{}
		if err := c.validateLine(it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := c.commit(items); err != nil {
		return nil, err
	}
	return c, nil
}

func totalOf(currency string, items []domain.CartLineItem) (domain.Money, error) {
	total := domain.Zero(currency)
	for _, it := range items {
		sub, err := it.Subtotal()
		if err != nil {
			return domain.Money{}, err
		}
		if total, err = total.Add(sub); err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}

// commit replaces the items when their total is representable. Callers hold mu.
func (c *Cart) commit(items []domain.CartLineItem) error {
	total, err := totalOf(c.currency, items)
	if err != nil {
		return err
	}
	c.items = items
	c.total = total
	return nil
}

func (c *Cart) withLine(i int, line domain.CartLineItem) []domain.CartLineItem {
	next := append([]domain.CartLineItem(nil), c.items...)
	if i < 0 {
		return append(next, line)
	}
	next[i] = line
	return next
}

func (c *Cart) validateLine(it domain.CartLineItem) error {
	if strings.TrimSpace(it.AmenityID) == "" {
		return &domain.ValidationError{Field: "amenity_id", Reason: "is required"}
	}
	if it.Quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if it.HasLimit() && it.Quantity > it.MaxLimit {
		return &domain.QuantityLimitExceeded{AmenityID: it.AmenityID, Limit: it.MaxLimit}
	}
	if it.UnitPrice.IsNegative() {
		return &domain.ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}
	if it.UnitPrice.Currency() != c.currency {
		return &domain.ValidationError{
			Field:  "currency",
			Reason: it.UnitPrice.Currency() + " item cannot go into a " + c.currency + " cart",
			Err:    domain.ErrCurrencyMismatch,
		}
	}
	return nil
}

func (c *Cart) indexOf(amenityID string) int {
	for i := range c.items {
		if c.items[i].AmenityID == amenityID {
			return i
		}
	}
	return -1
}

func (c *Cart) AddItem(a domain.Amenity, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	if i := c.indexOf(a.ID); i >= 0 {
		if c.policy == RejectDuplicates {
			return &domain.DuplicateItemError{AmenityID: a.ID}
		}
		line := c.items[i]
		if err := checkIncrease(line, quantity); err != nil {
			return err
		}
		line.Quantity += quantity
		return c.commit(c.withLine(i, line))
	}

	line := domain.CartLineItem{
		AmenityID: a.ID,
		Name:      a.Name,
		UnitPrice: a.UnitPrice,
		Quantity:  quantity,
		MaxLimit:  a.MaxLimit,
		Capacity:  a.Capacity,
	}
	if err := c.validateLine(line); err != nil {
		return err
	}
	return c.commit(c.withLine(-1, line))
}

// checkIncrease is written as a subtraction so that huge increments cannot
// wrap around and slip past the limit.
func checkIncrease(line domain.CartLineItem, by int) error {
	if line.HasLimit() && by > line.MaxLimit-line.Quantity {
		return &domain.QuantityLimitExceeded{AmenityID: line.AmenityID, Limit: line.MaxLimit}
	}
	if by > math.MaxInt-line.Quantity {
		return &domain.ValidationError{Field: "quantity", Reason: "is too large"}
	}
	return nil
}

func (c *Cart) RemoveItem(amenityID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(amenityID)
	if i < 0 {
		return &domain.NotFoundError{Kind: "cart item", ID: amenityID}
	}
	return c.commit(append(c.items[:i:i], c.items[i+1:]...))
}

// AdjustQuantity applies delta to a line. Going past MaxLimit is rejected
// with the cart untouched; going below one clamps to one.
func (c *Cart) AdjustQuantity(amenityID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(amenityID)
	if i < 0 {
		return &domain.NotFoundError{Kind: "cart item", ID: amenityID}
	}

	line := c.items[i]
	if delta > 0 {
		if err := checkIncrease(line, delta); err != nil {
			return err
		}
	}
	// quantity is at least one, so a negative delta cannot wrap
	next := line.Quantity + delta
	if next < 1 {
		next = 1
	}
	line.Quantity = next
	return c.commit(c.withLine(i, line))
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.total = domain.Zero(c.currency)
}

func (c *Cart) Items() []domain.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartLineItem(nil), c.items...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Currency() string {
	return c.currency
}

func (c *Cart) Total() domain.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Cart) Downpayment() (domain.Money, error) {
	return c.pricing.DownpaymentFor(c.Total())
}

// Submit freezes the cart into an order for the given stay. The cart itself
// is left as is; clearing it after a successful commit is up to the caller.
func (c *Cart) Submit(s domain.Schedule) (domain.SubmittedOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case s.CheckIn.IsZero():
		return domain.SubmittedOrder{}, &domain.ValidationError{Field: "check_in", Reason: "is required"}
	case s.CheckOut.IsZero():
		return domain.SubmittedOrder{}, &domain.ValidationError{Field: "check_out", Reason: "is required"}
	case !s.CheckIn.Before(s.CheckOut):
		return domain.SubmittedOrder{}, &domain.ValidationError{Field: "schedule", Reason: "check-in must be before check-out"}
	case len(c.items) == 0:
		return domain.SubmittedOrder{}, &domain.ValidationError{Field: "cart", Reason: "is empty"}
	}

	total := c.total
	dp, err := c.pricing.DownpaymentFor(total)
	if err != nil {
		return domain.SubmittedOrder{}, err
	}

	return domain.SubmittedOrder{
		Items:       append([]domain.CartLineItem(nil), c.items...),
		Schedule:    s,
		Total:       total,
		Downpayment: dp,
	}, nil
}

func (c *Cart) Snapshot() domain.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CartSnapshot{
		Currency: c.currency,
		Items:    append([]domain.CartLineItem(nil), c.items...),
	}
}
