package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCheckedIn BookingStatus = "CHECKED_IN"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingDeclined  BookingStatus = "DECLINED"
)

var AllStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingCheckedIn,
	BookingCompleted,
	BookingCancelled,
	BookingDeclined,
}

// ParseBookingStatus accepts the spellings found in stored records
// ("Checked-In", "checked in", "checkedin") and maps them onto the closed set.
func ParseBookingStatus(s string) (BookingStatus, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))

	for _, st := range AllStatuses {
		if strings.ReplaceAll(string(st), "_", "") == key {
			return st, nil
		}
	}
	return "", &UnknownStatusError{Status: s}
}

func (s BookingStatus) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Bucket string

const (
	BucketActive  Bucket = "active"
	BucketHistory Bucket = "history"
)

type Action string

const (
	ActionApprove     Action = "approve"
	ActionDecline     Action = "decline"
	ActionCheckIn     Action = "checkIn"
	ActionCancel      Action = "cancel"
	ActionExtend      Action = "extend"
	ActionCheckOut    Action = "checkOut"
	ActionViewReceipt Action = "viewReceipt"
)

type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = ""
	PaymentDownpayment PaymentStatus = "DOWNPAYMENT"
	PaymentPaid        PaymentStatus = "PAID"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type LineItem struct {
	AmenityID   string `json:"amenity_id"`
	AmenityName string `json:"amenity_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
}

type ExtensionRecord struct {
	Hours          int       `json:"hours"`
	AdditionalCost Money     `json:"additional_cost"`
	Timestamp      time.Time `json:"timestamp"`
}

type Reservation struct {
	ID                    uuid.UUID
	ReferenceCode         string
	Customer              Customer
	CheckIn               time.Time
	CheckOut              time.Time
	Items                 []LineItem
	Extensions            []ExtensionRecord
	TotalAmount           Money
	Downpayment           *Money
	PaymentStatus         PaymentStatus
	Status                BookingStatus
	ProofOfPaymentPresent bool
	CreatedAt             time.Time
	ExpiresAt             time.Time
}

// StatusCommand is what the core hands to persistence after approving a
// transition. Target equals From for actions that leave the status alone.
type StatusCommand struct {
	ReservationID uuid.UUID     `json:"reservation_id"`
	ReferenceCode string        `json:"reference_code"`
	From          BookingStatus `json:"from"`
	Target        BookingStatus `json:"target"`
	Action        Action        `json:"action"`
	IssuedAt      time.Time     `json:"issued_at"`
}

func (c StatusCommand) ChangesStatus() bool {
	return c.From != c.Target
}
