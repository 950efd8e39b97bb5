package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/ports/mocks"
	"github.com/srgjo27/resort_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCartService(t *testing.T) (*services.CartService, *mocks.CartStore, *mocks.ReservationRepository) {
	store := mocks.NewCartStore(t)
	repo := mocks.NewReservationRepository(t)
	pricing := newPricing()
	log := zaptest.NewLogger(t)

	bookings := services.NewBookingService(repo, mocks.NewStatusPublisher(t), pricing, services.BookingServiceConfig{}, log)
	svc := services.NewCartService(store, bookings, pricing, "PHP", services.MergeDuplicates, log)
	return svc, store, repo
}

func TestCartService_AddItemToNewCart(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	store.On("Load", ctx, "sess-1").Return(nil, nil)
	store.On("Save", ctx, "sess-1", mock.MatchedBy(func(s domain.CartSnapshot) bool {
		return len(s.Items) == 1 && s.Items[0].AmenityID == cottage.ID && s.Items[0].Quantity == 2 && !s.UpdatedAt.IsZero()
	})).Return(nil)

	view, err := svc.AddItem(ctx, "sess-1", cottage, 2)

	require.NoError(t, err)
	assert.True(t, view.Total.Equal(php(200000)))
	assert.True(t, view.Downpayment.Equal(php(40000)))
}

func TestCartService_LimitExceededIsNotSaved(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	store.On("Load", ctx, "sess-1").Return(&domain.CartSnapshot{
		Currency: "PHP",
		Items: []domain.CartLineItem{
			{AmenityID: cottage.ID, Name: cottage.Name, UnitPrice: cottage.UnitPrice, Quantity: 3, MaxLimit: 3},
		},
	}, nil)

	_, err := svc.AdjustQuantity(ctx, "sess-1", cottage.ID, 1)

	var limitErr *domain.QuantityLimitExceeded
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 3, limitErr.Limit)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_RemoveMissingItem(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	store.On("Load", ctx, "sess-1").Return(nil, nil)

	_, err := svc.RemoveItem(ctx, "sess-1", "kayak")

	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCartService_RequiresSession(t *testing.T) {
	svc, _, _ := newCartService(t)

	_, err := svc.View(context.Background(), " ")

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCartService_StoreFailure(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	store.On("Load", ctx, "sess-1").Return(nil, errors.New("redis: connection refused"))

	_, err := svc.View(ctx, "sess-1")

	assert.ErrorContains(t, err, "connection refused")
}

func TestCartService_Checkout(t *testing.T) {
	svc, store, repo := newCartService(t)
	ctx := context.Background()
	checkIn := time.Date(2026, 12, 24, 14, 0, 0, 0, time.UTC)

	store.On("Load", ctx, "sess-1").Return(&domain.CartSnapshot{
		Currency: "PHP",
		Items: []domain.CartLineItem{
			{AmenityID: cottage.ID, Name: cottage.Name, UnitPrice: cottage.UnitPrice, Quantity: 2, MaxLimit: 3},
			{AmenityID: kayak.ID, Name: kayak.Name, UnitPrice: kayak.UnitPrice, Quantity: 1},
		},
	}, nil)
	repo.On("CreateReservation", ctx, mock.MatchedBy(func(r *domain.Reservation) bool {
		return r.TotalAmount.Equal(php(225000)) && r.Downpayment.Equal(php(45000)) && len(r.Items) == 2
	})).Return(nil)
	store.On("Delete", ctx, "sess-1").Return(nil)

	r, err := svc.Checkout(ctx, "sess-1", services.CheckoutRequest{
		Customer: domain.Customer{Name: "Maria Clara", Email: "maria@example.com"},
		Schedule: domain.Schedule{CheckIn: checkIn, CheckOut: checkIn.Add(24 * time.Hour)},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, r.Status)
}

func TestCartService_CheckoutKeepsCartWhenCommitFails(t *testing.T) {
	svc, store, repo := newCartService(t)
	ctx := context.Background()
	checkIn := time.Date(2026, 12, 24, 14, 0, 0, 0, time.UTC)

	store.On("Load", ctx, "sess-1").Return(&domain.CartSnapshot{
		Currency: "PHP",
		Items:    []domain.CartLineItem{{AmenityID: kayak.ID, UnitPrice: kayak.UnitPrice, Quantity: 1}},
	}, nil)
	repo.On("CreateReservation", ctx, mock.Anything).Return(errors.New("tx aborted"))

	_, err := svc.Checkout(ctx, "sess-1", services.CheckoutRequest{
		Customer: domain.Customer{Name: "Maria Clara", Email: "maria@example.com"},
		Schedule: domain.Schedule{CheckIn: checkIn, CheckOut: checkIn.Add(time.Hour)},
	})

	assert.Error(t, err)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCartService_CheckoutEmptyCart(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()
	checkIn := time.Date(2026, 12, 24, 14, 0, 0, 0, time.UTC)

	store.On("Load", ctx, "sess-1").Return(nil, nil)

	_, err := svc.Checkout(ctx, "sess-1", services.CheckoutRequest{
		Customer: domain.Customer{Name: "Maria Clara", Email: "maria@example.com"},
		Schedule: domain.Schedule{CheckIn: checkIn, CheckOut: checkIn.Add(time.Hour)},
	})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cart", verr.Field)
}

func TestCartService_Clear(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	store.On("Delete", ctx, "sess-1").Return(nil)

	assert.NoError(t, svc.Clear(ctx, "sess-1"))
}
