package model

import "time"

type WishlistEntry struct {
	ServiceID string    `json:"service_id" bson:"service_id"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`

	// Resolved on read, never persisted.
	Service *ServiceSummary `json:"service,omitempty" bson:"-"`
}

// Wishlist holds a buyer's favorited services. One document per buyer,
// enforced by a unique index on buyer_id; the document is materialized
// lazily on first touch and never deleted.
type Wishlist struct {
	ID        string          `json:"id,omitempty" bson:"_id,omitempty"`
	BuyerID   string          `json:"buyer_id" bson:"buyer_id"`
	Services  []WishlistEntry `json:"services" bson:"services"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

// Contains reports whether the given service is already favorited.
func (w *Wishlist) Contains(serviceID string) bool {
	for _, entry := range w.Services {
		if entry.ServiceID == serviceID {
			return true
		}
	}
	return false
}
