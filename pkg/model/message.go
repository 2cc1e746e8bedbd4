package model

import "time"

// Message is a sender/receiver record with single-shot read state.
// Nothing stops a user from messaging themselves; the original system
// never enforced sender != receiver and this core keeps that behavior.
type Message struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SenderID   string `json:"sender_id" bson:"sender_id" validate:"required,mongodb"`
	ReceiverID string `json:"receiver_id" bson:"receiver_id" validate:"required,mongodb"`
	ServiceID  string `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,mongodb"`
	BookingID  string `json:"booking_id,omitempty" bson:"booking_id,omitempty" validate:"omitempty,mongodb"`

	Subject string     `json:"subject" bson:"subject" validate:"required,min=1,max=200"`
	Body    string     `json:"body" bson:"body" validate:"required,min=1,max=5000"`
	IsRead  bool       `json:"is_read" bson:"is_read"`
	ReadAt  *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Resolved on read, never persisted.
	Sender   *UserSummary `json:"sender,omitempty" bson:"-"`
	Receiver *UserSummary `json:"receiver,omitempty" bson:"-"`
}

// MessageRequest is the sender-supplied part of a new message.
type MessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,mongodb"`
	ServiceID  string `json:"service_id,omitempty" validate:"omitempty,mongodb"`
	BookingID  string `json:"booking_id,omitempty" validate:"omitempty,mongodb"`
	Subject    string `json:"subject" validate:"required,min=1,max=200"`
	Body       string `json:"body" validate:"required,min=1,max=5000"`
}
