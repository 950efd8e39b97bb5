package services

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srgjo27/resort_booking/internal/core/domain"
)

// Field aliases seen on extension records coming from the booking screens.
// The first alias present wins. Minor-unit cost aliases are checked before
// the major-unit ones.
var (
	extensionHoursAliases = []string{
		"hours", "extensionHours", "extension_hours", "additionalHours",
		"additional_hours", "extendedHours", "extended_hours", "duration",
	}
	extensionMinorCostAliases = []string{
		"additionalCostCents", "additional_cost_cents", "costCents", "cost_cents", "amountMinor",
	}
	extensionMajorCostAliases = []string{
		"additionalCost", "additional_cost", "extensionCost", "extension_cost", "cost", "amount", "price",
	}
	extensionTimeAliases = []string{
		"timestamp", "createdAt", "created_at", "extendedAt", "extended_at",
	}
)

var (
	hundred  = decimal.NewFromInt(100)
	maxHours = decimal.NewFromInt(math.MaxInt32)
	maxMinor = decimal.NewFromInt(math.MaxInt64 / 100)
)

type LedgerTotals struct {
	TotalHours int          `json:"total_hours"`
	TotalCost  domain.Money `json:"total_cost"`
}

type ExtensionLedger struct {
	currency string
}

func NewExtensionLedger(currency string) *ExtensionLedger {
	return &ExtensionLedger{currency: domain.Zero(currency).Currency()}
}

func (l *ExtensionLedger) Currency() string {
	return l.currency
}

// Normalize coerces a loosely-typed extension record into an ExtensionRecord.
// Missing, negative or unparseable fields become zero; it never fails.
func (l *ExtensionLedger) Normalize(raw map[string]any) domain.ExtensionRecord {
	rec := domain.ExtensionRecord{AdditionalCost: domain.Zero(l.currency)}
	if raw == nil {
		return rec
	}

	if d, ok := firstDecimal(raw, extensionHoursAliases); ok && d.IsPositive() && d.LessThanOrEqual(maxHours) {
		rec.Hours = int(d.IntPart())
	}

	if d, ok := firstDecimal(raw, extensionMinorCostAliases); ok {
		rec.AdditionalCost = domain.New(clampMinor(d.Round(0)), l.currency)
	} else if d, ok := firstDecimal(raw, extensionMajorCostAliases); ok {
		rec.AdditionalCost = domain.New(clampMinor(d.Mul(hundred).Round(0)), l.currency)
	}

	for _, key := range extensionTimeAliases {
		if v, ok := raw[key]; ok {
			if ts, ok := toTime(v); ok {
				rec.Timestamp = ts
				break
			}
		}
	}

	return rec
}

// ParseExtension is the strict counterpart of Normalize used when an
// extension is being recorded: hours and cost must both be present under a
// known alias and parse to usable values. The timestamp stays optional.
func (l *ExtensionLedger) ParseExtension(raw map[string]any) (domain.ExtensionRecord, error) {
	rec := domain.ExtensionRecord{AdditionalCost: domain.Zero(l.currency)}

	hours, key, ok := lookupDecimal(raw, extensionHoursAliases)
	switch {
	case key == "":
		return rec, &domain.ValidationError{Field: "hours", Reason: "is required"}
	case !ok:
		return rec, &domain.ValidationError{Field: key, Reason: "must be a number"}
	case hours.LessThan(decimal.NewFromInt(1)) || hours.GreaterThan(maxHours):
		return rec, &domain.ValidationError{Field: key, Reason: "must be between 1 and 2147483647"}
	}
	rec.Hours = int(hours.IntPart())

	cost, key, ok := lookupDecimal(raw, extensionMinorCostAliases)
	scale := decimal.NewFromInt(1)
	if key == "" {
		cost, key, ok = lookupDecimal(raw, extensionMajorCostAliases)
		scale = hundred
	}
	switch {
	case key == "":
		return rec, &domain.ValidationError{Field: "additional_cost", Reason: "is required"}
	case !ok:
		return rec, &domain.ValidationError{Field: key, Reason: "must be a number"}
	case cost.IsNegative():
		return rec, &domain.ValidationError{Field: key, Reason: "must not be negative"}
	}
	minor := cost.Mul(scale).Round(0)
	if minor.GreaterThan(maxMinor) {
		return rec, &domain.ValidationError{Field: key, Reason: "is too large"}
	}
	rec.AdditionalCost = domain.New(minor.IntPart(), l.currency)

	for _, k := range extensionTimeAliases {
		if v, ok := raw[k]; ok {
			if ts, ok := toTime(v); ok {
				rec.Timestamp = ts
				break
			}
		}
	}

	return rec, nil
}

func (l *ExtensionLedger) NormalizeAll(raws []map[string]any) []domain.ExtensionRecord {
	out := make([]domain.ExtensionRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, l.Normalize(raw))
	}
	return out
}

// Aggregate sums hours and cost. Records in a foreign currency contribute
// their hours only.
func (l *ExtensionLedger) Aggregate(records []domain.ExtensionRecord) LedgerTotals {
	return l.AggregateIn(l.currency, records)
}

func (l *ExtensionLedger) AggregateIn(currency string, records []domain.ExtensionRecord) LedgerTotals {
	totals := LedgerTotals{TotalCost: domain.Zero(currency)}
	for _, r := range records {
		if r.Hours > 0 {
			totals.TotalHours += r.Hours
		}
		if r.AdditionalCost.IsNegative() {
			continue
		}
		if sum, err := totals.TotalCost.Add(r.AdditionalCost); err == nil {
			totals.TotalCost = sum
		}
	}
	return totals
}

func clampMinor(d decimal.Decimal) int64 {
	if !d.IsPositive() || d.GreaterThan(maxMinor) {
		return 0
	}
	return d.IntPart()
}

// lookupDecimal returns the value under the first alias present in raw. key
// is empty when no alias is present; ok is false when the value under key
// does not parse.
func lookupDecimal(raw map[string]any, aliases []string) (d decimal.Decimal, key string, ok bool) {
	for _, k := range aliases {
		v, present := raw[k]
		if !present || v == nil {
			continue
		}
		d, ok = toDecimal(v)
		return d, k, ok
	}
	return decimal.Zero, "", false
}

func firstDecimal(raw map[string]any, aliases []string) (decimal.Decimal, bool) {
	d, key, ok := lookupDecimal(raw, aliases)
	if key == "" {
		return decimal.Zero, false
	}
	if !ok {
		// present but malformed: treated as zero rather than falling through
		return decimal.Zero, true
	}
	return d, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		if n > math.MaxInt64 {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(n)), true
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	}
	return decimal.Zero, false
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// parseDecimal drops currency symbols, spaces and thousands separators
// before parsing, so "₱1,250.50" reads as 1250.50.
func parseDecimal(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
			if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	}
	if d, ok := toDecimal(v); ok && d.IsPositive() {
		return time.Unix(d.IntPart(), 0).UTC(), true
	}
	return time.Time{}, false
}
