package model

import (
	"time"
)

// Booking is a reservation of an Ad for a date range.  Amount and CreatedAt
// are filled by PrePersist the first time the booking is saved.
//
// Fields:
//
//	ID        – primary key identifier.
//	AdID      – the booked ad.
//	AuthorID  – user who made the booking.
//	StartDate – arrival date (UTC).
//	EndDate   – departure date, strictly after StartDate.
//	CreatedAt – when the booking was first saved.
//	Amount    – total price, ad price × Duration unless supplied.
//	Comment   – optional note from the guest (nullable).
type Booking struct {
	ID        uint64       `json:"id"`
	AdID      uint64       `json:"ad_id"`
	AuthorID  uint64       `json:"author_id"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	CreatedAt time.Time    `json:"created_at"`
	Amount    int          `json:"amount"`
	Comment   *string      `json:"comment,omitempty"`
	Author    *UserSummary `json:"author,omitempty"`
}

// MaxStayNights is the longest stay a single booking may cover.
const MaxStayNights = 365

// Validate checks the date range and amount.
func (b *Booking) Validate() error {
	if b.StartDate.IsZero() || b.EndDate.IsZero() || !b.EndDate.After(b.StartDate) {
		return ErrInvalidDateRange
	}
	if b.Duration() > MaxStayNights {
		return ErrStayTooLong
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Duration is the number of whole days between StartDate and EndDate.
func (b *Booking) Duration() int {
	return wholeDays(b.StartDate, b.EndDate)
}

// Days returns the calendar days the booking occupies.
func (b *Booking) Days() []string {
	return CoveredDays(b.StartDate, b.EndDate)
}

// PrePersist fills CreatedAt and Amount when they are still zero.  price is
// the per-night price of the booked ad.
func (b *Booking) PrePersist(price int, now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}
	if b.Amount == 0 {
		b.Amount = price * b.Duration()
	}
}
