package services_test

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cottage = domain.Amenity{ID: "cottage-a", Name: "Cottage A", UnitPrice: php(100000), MaxLimit: 3, Capacity: 10}
	kayak   = domain.Amenity{ID: "kayak", Name: "Kayak", UnitPrice: php(25000)}
)

func TestCart_AdjustQuantityRespectsLimit(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 1))

	require.NoError(t, cart.AdjustQuantity(cottage.ID, 1))
	require.NoError(t, cart.AdjustQuantity(cottage.ID, 1))
	assert.Equal(t, 3, cart.Items()[0].Quantity)
	assert.True(t, cart.Total().Equal(php(300000)))

	before := cart.Snapshot()
	err := cart.AdjustQuantity(cottage.ID, 1)

	var limitErr *domain.QuantityLimitExceeded
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 3, limitErr.Limit)
	assert.True(t, cart.Total().Equal(php(300000)))
	assert.Equal(t, before, cart.Snapshot())
}

func TestCart_AdjustQuantityClampsAtOne(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(kayak, 2))

	require.NoError(t, cart.AdjustQuantity(kayak.ID, -10))
	assert.Equal(t, 1, cart.Items()[0].Quantity)
	assert.Equal(t, 1, cart.Len())
}

func TestCart_AdjustQuantityUnknownItem(t *testing.T) {
	cart := services.NewCart("PHP")

	err := cart.AdjustQuantity("missing", 1)
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCart_AddMergesDuplicates(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 1))
	require.NoError(t, cart.AddItem(cottage, 2))

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 3, cart.Items()[0].Quantity)

	err := cart.AddItem(cottage, 1)
	var limitErr *domain.QuantityLimitExceeded
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 3, cart.Items()[0].Quantity)
}

func TestCart_RejectDuplicatesPolicy(t *testing.T) {
	cart := services.NewCart("PHP", services.WithDuplicatePolicy(services.RejectDuplicates))
	require.NoError(t, cart.AddItem(kayak, 1))

	err := cart.AddItem(kayak, 1)
	var dup *domain.DuplicateItemError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "kayak", dup.AmenityID)
	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestCart_AddValidation(t *testing.T) {
	cart := services.NewCart("PHP")

	var verr *domain.ValidationError
	assert.True(t, errors.As(cart.AddItem(kayak, 0), &verr))
	assert.True(t, errors.As(cart.AddItem(domain.Amenity{ID: "usd", UnitPrice: domain.New(100, "USD")}, 1), &verr))
	assert.ErrorIs(t, cart.AddItem(domain.Amenity{ID: "usd", UnitPrice: domain.New(100, "USD")}, 1), domain.ErrCurrencyMismatch)

	var limitErr *domain.QuantityLimitExceeded
	assert.True(t, errors.As(cart.AddItem(cottage, 4), &limitErr))
	assert.Equal(t, 0, cart.Len())
}

func TestCart_AddThenRemoveRestoresTotal(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 2))
	before := cart.Total()

	require.NoError(t, cart.AddItem(kayak, 3))
	assert.True(t, cart.Total().Equal(php(275000)))

	require.NoError(t, cart.RemoveItem(kayak.ID))
	assert.True(t, cart.Total().Equal(before))

	err := cart.RemoveItem(kayak.ID)
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCart_TotalAndDownpayment(t *testing.T) {
	cart := services.NewCart("PHP")
	assert.True(t, cart.Total().Equal(php(0)))
	dp, err := cart.Downpayment()
	require.NoError(t, err)
	assert.True(t, dp.Equal(php(0)))

	require.NoError(t, cart.AddItem(cottage, 2))
	require.NoError(t, cart.AddItem(kayak, 1))

	var want int64
	for _, it := range cart.Items() {
		want += it.UnitPrice.Amount() * int64(it.Quantity)
	}
	assert.Equal(t, want, cart.Total().Amount())
	dp, err = cart.Downpayment()
	require.NoError(t, err)
	assert.True(t, dp.Equal(php(45000)))
}

func TestCart_ItemsKeepInsertionOrder(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(kayak, 1))
	require.NoError(t, cart.AddItem(cottage, 1))

	items := cart.Items()
	assert.Equal(t, "kayak", items[0].AmenityID)
	assert.Equal(t, "cottage-a", items[1].AmenityID)
}

func TestCart_Submit(t *testing.T) {
	checkIn := time.Date(2026, 12, 24, 14, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(22 * time.Hour)

	cart := services.NewCart("PHP")

	var verr *domain.ValidationError
	_, err := cart.Submit(domain.Schedule{CheckIn: checkIn, CheckOut: checkOut})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cart", verr.Field)

	require.NoError(t, cart.AddItem(cottage, 2))

	_, err = cart.Submit(domain.Schedule{CheckOut: checkOut})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "check_in", verr.Field)

	_, err = cart.Submit(domain.Schedule{CheckIn: checkIn})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "check_out", verr.Field)

	_, err = cart.Submit(domain.Schedule{CheckIn: checkOut, CheckOut: checkOut})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "schedule", verr.Field)

	order, err := cart.Submit(domain.Schedule{CheckIn: checkIn, CheckOut: checkOut})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(php(200000)))
	assert.True(t, order.Downpayment.Equal(php(40000)))
	assert.Len(t, order.Items, 1)

	// the order is a snapshot; the cart is untouched and later edits don't leak in
	require.NoError(t, cart.AdjustQuantity(cottage.ID, 1))
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 1, cart.Len())
}

func TestRestoreCart(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 2))
	require.NoError(t, cart.AddItem(kayak, 1))

	restored, err := services.RestoreCart(cart.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, cart.Items(), restored.Items())
	assert.True(t, cart.Total().Equal(restored.Total()))

	_, err = services.RestoreCart(domain.CartSnapshot{
		Currency: "PHP",
		Items: []domain.CartLineItem{
			{AmenityID: "a", UnitPrice: php(1), Quantity: 5, MaxLimit: 2},
		},
	})
	var limitErr *domain.QuantityLimitExceeded
	assert.True(t, errors.As(err, &limitErr))

	_, err = services.RestoreCart(domain.CartSnapshot{
		Currency: "PHP",
		Items: []domain.CartLineItem{
			{AmenityID: "a", UnitPrice: php(1), Quantity: 1},
			{AmenityID: "a", UnitPrice: php(1), Quantity: 1},
		},
	})
	var dup *domain.DuplicateItemError
	assert.True(t, errors.As(err, &dup))
}

func TestCart_ConcurrentAdjustNeverExceedsLimit(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 1))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cart.AdjustQuantity(cottage.ID, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, cart.Items()[0].Quantity)
}

func TestCart_AdjustQuantityHugeDeltaIsRejected(t *testing.T) {
	cart := services.NewCart("PHP")
	require.NoError(t, cart.AddItem(cottage, 2))

	err := cart.AdjustQuantity(cottage.ID, math.MaxInt)

	var limitErr *domain.QuantityLimitExceeded
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 2, cart.Items()[0].Quantity)

	require.NoError(t, cart.AdjustQuantity(cottage.ID, math.MinInt))
	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestCart_UnlimitedLineCannotWrapQuantity(t *testing.T) {
	cart := services.NewCart("PHP")
	free := domain.Amenity{ID: "towel", UnitPrice: php(0)}
	require.NoError(t, cart.AddItem(free, 10))

	var verr *domain.ValidationError
	assert.True(t, errors.As(cart.AdjustQuantity(free.ID, math.MaxInt), &verr))
	assert.True(t, errors.As(cart.AddItem(free, math.MaxInt), &verr))
	assert.Equal(t, 10, cart.Items()[0].Quantity)
}

func TestCart_TotalOverflowIsRejected(t *testing.T) {
	cart := services.NewCart("PHP")

	err := cart.AddItem(kayak, math.MaxInt64/20000)

	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
	assert.Equal(t, 0, cart.Len())
	assert.True(t, cart.Total().Equal(php(0)))

	require.NoError(t, cart.AddItem(kayak, 1))
	err = cart.AdjustQuantity(kayak.ID, math.MaxInt64/25000)
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
	assert.Equal(t, 1, cart.Items()[0].Quantity)
	assert.True(t, cart.Total().Equal(php(25000)))

	_, err = services.RestoreCart(domain.CartSnapshot{
		Currency: "PHP",
		Items: []domain.CartLineItem{
			{AmenityID: "a", UnitPrice: php(math.MaxInt64), Quantity: 1},
			{AmenityID: "b", UnitPrice: php(1), Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
}
