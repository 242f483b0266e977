// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

// Event types carried in BookingEvent.Type.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
	AdDeleted      = "ad.deleted"
)

// BookingEvent is published after a booking or ad write commits.  It holds
// enough for downstream consumers to log or notify without querying the
// primary database.  Booking fields are empty for ad.deleted.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  uint64 `json:"booking_id,omitempty"`
	AdID       uint64 `json:"ad_id"`
	UserID     uint64 `json:"user_id"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Amount     int    `json:"amount,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
