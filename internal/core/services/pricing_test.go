package services_test

import (
	"errors"
	"testing"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func php(minor int64) domain.Money { return domain.New(minor, "PHP") }

func newPricing() *services.PricingEngine {
	return services.NewPricingEngine(services.NewExtensionLedger("PHP"), services.DefaultPricingConfig())
}

func TestComputeBreakdown_WithExtension(t *testing.T) {
	r := domain.Reservation{
		Status:      domain.BookingCheckedIn,
		TotalAmount: php(500000),
		Extensions: []domain.ExtensionRecord{
			{Hours: 2, AdditionalCost: php(50000)},
		},
	}

	b, err := newPricing().ComputeBreakdown(r)
	require.NoError(t, err)

	assert.True(t, b.BaseAmount.Equal(php(450000)))
	assert.True(t, b.ExtensionCost.Equal(php(50000)))
	assert.Equal(t, 2, b.ExtensionHours)
	assert.True(t, b.Downpayment.Equal(php(100000)))
	assert.True(t, b.DownpaymentComputed)
	assert.True(t, b.Balance.Equal(php(400000)))
	assert.True(t, b.IsFullyPaid)
	assert.False(t, b.Inconsistent)

	sum, err := b.BaseAmount.Add(b.ExtensionCost)
	require.NoError(t, err)
	assert.True(t, sum.Equal(b.TotalAmount))
}

func TestComputeBreakdown_StoredDownpaymentIsAuthoritative(t *testing.T) {
	stored := php(150000)
	r := domain.Reservation{
		Status:      domain.BookingConfirmed,
		TotalAmount: php(500000),
		Downpayment: &stored,
	}

	b, err := newPricing().ComputeBreakdown(r)
	require.NoError(t, err)
	assert.True(t, b.Downpayment.Equal(stored))
	assert.False(t, b.DownpaymentComputed)
	assert.True(t, b.Balance.Equal(php(350000)))
	assert.False(t, b.IsFullyPaid)
}

func TestComputeBreakdown_PaymentStatusPaid(t *testing.T) {
	r := domain.Reservation{
		Status:        domain.BookingConfirmed,
		TotalAmount:   php(100000),
		PaymentStatus: domain.PaymentPaid,
	}

	b, err := newPricing().ComputeBreakdown(r)
	require.NoError(t, err)
	assert.True(t, b.IsFullyPaid)
}

func TestComputeBreakdown_ExtensionsExceedTotal(t *testing.T) {
	r := domain.Reservation{
		Status:      domain.BookingCheckedIn,
		TotalAmount: php(10000),
		Extensions: []domain.ExtensionRecord{
			{Hours: 1, AdditionalCost: php(20000)},
		},
	}

	b, err := newPricing().ComputeBreakdown(r)

	var neg *domain.NegativeResultError
	require.True(t, errors.As(err, &neg))
	assert.Equal(t, "base amount", neg.Operation)
	assert.True(t, b.Inconsistent)
	assert.True(t, b.BaseAmount.IsZero())
	assert.True(t, b.TotalAmount.Equal(php(10000)))
}

func TestComputeBreakdown_DownpaymentExceedsTotal(t *testing.T) {
	stored := php(20000)
	r := domain.Reservation{
		Status:      domain.BookingConfirmed,
		TotalAmount: php(10000),
		Downpayment: &stored,
	}

	b, err := newPricing().ComputeBreakdown(r)

	var neg *domain.NegativeResultError
	require.True(t, errors.As(err, &neg))
	assert.Equal(t, "balance", neg.Operation)
	assert.True(t, b.Inconsistent)
	assert.True(t, b.Balance.IsZero())
}

func TestComputeBreakdown_TotalEqualsBasePlusExtensions(t *testing.T) {
	engine := newPricing()

	for total := int64(0); total <= 100000; total += 9973 {
		for ext := int64(0); ext <= total; ext += 7919 {
			r := domain.Reservation{
				Status:      domain.BookingPending,
				TotalAmount: php(total),
				Extensions:  []domain.ExtensionRecord{{Hours: 1, AdditionalCost: php(ext)}},
			}

			b, err := engine.ComputeBreakdown(r)
			require.NoError(t, err)

			sum, err := b.BaseAmount.Add(b.ExtensionCost)
			require.NoError(t, err)
			assert.True(t, sum.Equal(b.TotalAmount), "total=%d ext=%d", total, ext)
		}
	}
}

func TestPricingEngine_CustomRate(t *testing.T) {
	engine := services.NewPricingEngine(services.NewExtensionLedger("PHP"), services.PricingConfig{
		DownpaymentNumerator:   50,
		DownpaymentDenominator: 100,
	})

	dp, err := engine.DownpaymentFor(php(300000))
	require.NoError(t, err)
	assert.True(t, dp.Equal(php(150000)))
}
