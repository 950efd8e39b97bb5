package domain

import "time"

type Amenity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unit_price"`
	// MaxLimit of zero means unlimited.
	MaxLimit int `json:"max_limit,omitempty"`
	Capacity int `json:"capacity,omitempty"`
}

type CartLineItem struct {
	AmenityID string `json:"amenity_id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	MaxLimit  int    `json:"max_limit,omitempty"`
	Capacity  int    `json:"capacity,omitempty"`
}

func (i CartLineItem) HasLimit() bool {
	return i.MaxLimit > 0
}

func (i CartLineItem) Subtotal() (Money, error) {
	return i.UnitPrice.MultiplyByQuantity(i.Quantity)
}

type Schedule struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type SubmittedOrder struct {
	Items       []CartLineItem `json:"items"`
	Schedule    Schedule       `json:"schedule"`
	Total       Money          `json:"total"`
	Downpayment Money          `json:"downpayment"`
}

type CartSnapshot struct {
	Currency  string         `json:"currency"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}
