package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/ports"
)

type CheckoutRequest struct {
	Customer domain.Customer `json:"customer"`
	Schedule domain.Schedule `json:"schedule"`
}

type CartView struct {
	SessionID   string                `json:"session_id"`
	Items       []domain.CartLineItem `json:"items"`
	Total       domain.Money          `json:"total"`
	Downpayment domain.Money          `json:"downpayment"`
}

// CartService keeps one cart per browsing session in a CartStore. Each
// session has its own lock so a load-mutate-save cycle is never interleaved.
type CartService struct {
	store    ports.CartStore
	bookings *BookingService
	pricing  *PricingEngine
	currency string
	policy   DuplicatePolicy
	log      *zap.Logger
	now      func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

// sessionLockStripes bounds the lock set; unrelated sessions may share a
// stripe and briefly serialize.
const sessionLockStripes = 64

func NewCartService(store ports.CartStore, bookings *BookingService, pricing *PricingEngine, currency string, policy DuplicatePolicy, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		store:    store,
		bookings: bookings,
		pricing:  pricing,
		currency: domain.Zero(currency).Currency(),
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

func (s *CartService) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

func (s *CartService) load(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &domain.ValidationError{Field: "session_id", Reason: "is required"}
	}

	snap, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}

	opts := []CartOption{WithDuplicatePolicy(s.policy), WithPricing(s.pricing)}
	if snap == nil {
		return NewCart(s.currency, opts...), nil
	}
	return RestoreCart(*snap, opts...)
}

func (s *CartService) save(ctx context.Context, sessionID string, c *Cart) error {
	snap := c.Snapshot()
	snap.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sessionID, snap); err != nil {
		return fmt.Errorf("save cart %s: %w", sessionID, err)
	}
	return nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (CartView, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := fn(c); err != nil {
		return CartView{}, err
	}
	v, err := view(sessionID, c)
	if err != nil {
		return CartView{}, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return CartView{}, err
	}
	return v, nil
}

func view(sessionID string, c *Cart) (CartView, error) {
	dp, err := c.Downpayment()
	if err != nil {
		return CartView{}, err
	}
	items := c.Items()
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return CartView{
		SessionID:   sessionID,
		Items:       items,
		Total:       c.Total(),
		Downpayment: dp,
	}, nil
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return view(sessionID, c)
}

func (s *CartService) AddItem(ctx context.Context, sessionID string, a domain.Amenity, quantity int) (CartView, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.AddItem(a, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, amenityID string) (CartView, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.RemoveItem(amenityID)
	})
}

func (s *CartService) AdjustQuantity(ctx context.Context, sessionID, amenityID string, delta int) (CartView, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.AdjustQuantity(amenityID, delta)
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart %s: %w", sessionID, err)
	}
	return nil
}

// Checkout submits the session cart as a new reservation. The cart is only
// dropped once the reservation has been stored.
func (s *CartService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*domain.Reservation, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	order, err := c.Submit(req.Schedule)
	if err != nil {
		return nil, err
	}

	reservation, err := s.bookings.CreateReservation(ctx, CreateReservationRequest{
		Customer: req.Customer,
		Order:    order,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn("reservation stored but cart not cleared",
			zap.String("session_id", sessionID),
			zap.String("reservation_id", reservation.ID.String()),
			zap.Error(err),
		)
	}

	return reservation, nil
}
