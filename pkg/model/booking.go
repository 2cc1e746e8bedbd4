package model

import "time"

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Terminal reports whether no further transition may leave the status.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// PaymentStatus is tracked alongside the booking but not transitioned
// by this core.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentAdvance   PaymentStatus = "advance-paid"
	PaymentFullyPaid PaymentStatus = "fully-paid"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Venue struct {
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Pincode string `json:"pincode,omitempty" bson:"pincode,omitempty"`
}

type Duration struct {
	Value float64 `json:"value" bson:"value" validate:"required,gt=0"`
	Unit  string  `json:"unit" bson:"unit" validate:"required,oneof=hours days"`
}

// Booking references its buyer, service and seller by id. The seller
// id is a snapshot taken from the service at creation time, not a live
// foreign key: if the service later changes hands the booking keeps
// its original counterparty.
type Booking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BuyerID   string `json:"buyer_id" bson:"buyer_id" validate:"required,mongodb"`
	ServiceID string `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	SellerID  string `json:"seller_id" bson:"seller_id" validate:"required,mongodb"`

	EventDate           time.Time     `json:"event_date" bson:"event_date" validate:"required"`
	EventType           string        `json:"event_type" bson:"event_type" validate:"required,min=2,max=100"`
	Venue               Venue         `json:"venue" bson:"venue"`
	Duration            Duration      `json:"duration" bson:"duration" validate:"required"`
	NumberOfGuests      int           `json:"number_of_guests" bson:"number_of_guests" validate:"required,min=1"`
	TotalAmount         float64       `json:"total_amount" bson:"total_amount" validate:"required,gt=0"`
	Status              BookingStatus `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed in-progress completed cancelled"`
	PaymentStatus       PaymentStatus `json:"payment_status" bson:"payment_status" validate:"omitempty,oneof=pending advance-paid fully-paid refunded"`
	SpecialRequirements string        `json:"special_requirements,omitempty" bson:"special_requirements,omitempty" validate:"omitempty,max=1000"`
	CancellationReason  string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Resolved on read, never persisted.
	Service *ServiceSummary `json:"service,omitempty" bson:"-"`
	Buyer   *UserSummary    `json:"buyer,omitempty" bson:"-"`
	Seller  *UserSummary    `json:"seller,omitempty" bson:"-"`
}

// BookingRequest is the buyer-supplied part of a new booking.
type BookingRequest struct {
	ServiceID           string    `json:"service_id" validate:"required,mongodb"`
	EventDate           time.Time `json:"event_date" validate:"required"`
	EventType           string    `json:"event_type" validate:"required,min=2,max=100"`
	Venue               Venue     `json:"venue"`
	Duration            Duration  `json:"duration" validate:"required"`
	NumberOfGuests      int       `json:"number_of_guests" validate:"required,min=1"`
	TotalAmount         float64   `json:"total_amount" validate:"required,gt=0"`
	SpecialRequirements string    `json:"special_requirements,omitempty" validate:"omitempty,max=1000"`
}
