package model

import "time"

// Service categories form a closed set.
const (
	CategoryFlowers     = "Flowers"
	CategoryDecor       = "Décor"
	CategoryPriest      = "Priest Services"
	CategoryMusic       = "Music/Band"
	CategoryTent        = "Tent & Furniture"
	CategoryNecessities = "Chairs & Basic Necessities"
)

const (
	PricePerHour  = "per hour"
	PricePerDay   = "per day"
	PricePerEvent = "per event"
	PricePerItem  = "per item"
)

type Pricing struct {
	BasePrice float64 `json:"base_price" bson:"base_price" validate:"required,gt=0"`
	PriceType string  `json:"price_type" bson:"price_type" validate:"omitempty,oneof='per hour' 'per day' 'per event' 'per item'"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type Location struct {
	Address     string       `json:"address,omitempty" bson:"address,omitempty"`
	City        string       `json:"city" bson:"city" validate:"required,min=2,max=100"`
	State       string       `json:"state,omitempty" bson:"state,omitempty"`
	Pincode     string       `json:"pincode,omitempty" bson:"pincode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

type Image struct {
	URL string `json:"url" bson:"url" validate:"required,url"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty"`
}

type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Service is owned by exactly one seller. SellerID never changes after
// creation.
type Service struct {
	ID                 string   `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SellerID           string   `json:"seller_id" bson:"seller_id" validate:"required,mongodb"`
	Name               string   `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category           string   `json:"category" bson:"category" validate:"required,oneof=Flowers Décor 'Priest Services' Music/Band 'Tent & Furniture' 'Chairs & Basic Necessities'"`
	Description        string   `json:"description" bson:"description" validate:"required,min=10,max=2000"`
	Pricing            Pricing  `json:"pricing" bson:"pricing" validate:"required"`
	Images             []Image  `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,dive"`
	Availability       bool     `json:"availability" bson:"availability"`
	Location           Location `json:"location" bson:"location" validate:"required"`
	Rating             Rating   `json:"rating" bson:"rating"`
	Features           []string `json:"features,omitempty" bson:"features,omitempty"`
	MinBookingDuration string   `json:"min_booking_duration,omitempty" bson:"min_booking_duration,omitempty"`
	AdvanceBookingDays int      `json:"advance_booking_days" bson:"advance_booking_days"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Resolved on read, never persisted.
	Seller *UserSummary `json:"seller,omitempty" bson:"-"`
}

// ServiceUpdate is a partial patch. SellerID is deliberately absent;
// ownership is frozen at creation.
type ServiceUpdate struct {
	Name               string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Category           string    `json:"category,omitempty" validate:"omitempty,oneof=Flowers Décor 'Priest Services' Music/Band 'Tent & Furniture' 'Chairs & Basic Necessities'"`
	Description        string    `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Pricing            *Pricing  `json:"pricing,omitempty" validate:"omitempty"`
	Images             []Image   `json:"images,omitempty" validate:"omitempty,dive"`
	Availability       *bool     `json:"availability,omitempty"`
	Location           *Location `json:"location,omitempty" validate:"omitempty"`
	Features           []string  `json:"features,omitempty"`
	MinBookingDuration string    `json:"min_booking_duration,omitempty"`
	AdvanceBookingDays *int      `json:"advance_booking_days,omitempty" validate:"omitempty,min=0"`
}

// ServiceSummary is the slice embedded in bookings and wishlists when
// the service relation is resolved.
type ServiceSummary struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Category string  `json:"category" bson:"category"`
	Pricing  Pricing `json:"pricing" bson:"pricing"`
}

func (s *Service) Summary() *ServiceSummary {
	return &ServiceSummary{
		ID:       s.ID,
		Name:     s.Name,
		Category: s.Category,
		Pricing:  s.Pricing,
	}
}
