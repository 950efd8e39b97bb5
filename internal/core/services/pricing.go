package services

import (
	"errors"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

type PricingConfig struct {
	DownpaymentNumerator   int64
	DownpaymentDenominator int64
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{DownpaymentNumerator: 20, DownpaymentDenominator: 100}
}

type PricingBreakdown struct {
	BaseAmount          domain.Money `json:"base_amount"`
	ExtensionCost       domain.Money `json:"extension_cost"`
	ExtensionHours      int          `json:"extension_hours"`
	TotalAmount         domain.Money `json:"total_amount"`
	Downpayment         domain.Money `json:"downpayment"`
	DownpaymentComputed bool         `json:"downpayment_computed"`
	Balance             domain.Money `json:"balance"`
	IsFullyPaid         bool         `json:"is_fully_paid"`
	// Inconsistent is set when a figure had to be clamped at zero because the
	// stored amounts contradict each other.
	Inconsistent bool `json:"inconsistent"`
}

type PricingEngine struct {
	cfg    PricingConfig
	ledger *ExtensionLedger
}

func NewPricingEngine(ledger *ExtensionLedger, cfg PricingConfig) *PricingEngine {
	if cfg.DownpaymentDenominator <= 0 {
		cfg = DefaultPricingConfig()
	}
	return &PricingEngine{cfg: cfg, ledger: ledger}
}

func (p *PricingEngine) DownpaymentFor(total domain.Money) (domain.Money, error) {
	return total.Percentage(p.cfg.DownpaymentNumerator, p.cfg.DownpaymentDenominator)
}

// ComputeBreakdown derives the display figures for a reservation. On a
// NegativeResultError the returned breakdown is still filled in, with the
// offending figure at zero and Inconsistent set.
func (p *PricingEngine) ComputeBreakdown(r domain.Reservation) (PricingBreakdown, error) {
	total := r.TotalAmount
	ext := p.ledger.AggregateIn(total.Currency(), r.Extensions)

	b := PricingBreakdown{
		TotalAmount:    total,
		ExtensionCost:  ext.TotalCost,
		ExtensionHours: ext.TotalHours,
		IsFullyPaid:    isFullyPaid(r),
	}
	var errs []error

	base, err := total.Subtract(ext.TotalCost)
	if err != nil {
		var neg *domain.NegativeResultError
		if !errors.As(err, &neg) {
			return b, err
		}
		base = domain.Zero(total.Currency())
		b.Inconsistent = true
		neg.Operation = "base amount"
		errs = append(errs, neg)
	}
	b.BaseAmount = base

	if r.Downpayment != nil {
		b.Downpayment = *r.Downpayment
	} else {
		dp, err := p.DownpaymentFor(total)
		if err != nil {
			return b, err
		}
		b.Downpayment = dp
		b.DownpaymentComputed = true
	}

	balance, err := total.Subtract(b.Downpayment)
	if err != nil {
		var neg *domain.NegativeResultError
		if !errors.As(err, &neg) {
			return b, err
		}
		balance = domain.Zero(total.Currency())
		b.Inconsistent = true
		neg.Operation = "balance"
		errs = append(errs, neg)
	}
	b.Balance = balance

	return b, errors.Join(errs...)
}

func isFullyPaid(r domain.Reservation) bool {
	switch r.Status {
	case domain.BookingCheckedIn, domain.BookingCompleted:
		return true
	}
	return r.PaymentStatus == domain.PaymentPaid
}
