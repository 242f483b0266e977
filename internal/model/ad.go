package model

import (
	"strings"
	"time"
)

// Ad is a rental listing owned by its author.  Bookings, comments and
// images belong to the ad and are only populated by detail lookups.
//
// Fields:
//
//	ID           – primary key identifier.
//	AuthorID     – owner of the listing.
//	Title        – short headline.
//	Price        – price per night.
//	Introduction – teaser text.
//	Rooms        – number of rooms.
//	Content      – full description.
type Ad struct {
	ID           uint64       `json:"id"`
	AuthorID     uint64       `json:"author_id"`
	Title        string       `json:"title"`
	Price        int          `json:"price"`
	Introduction string       `json:"introduction"`
	Rooms        int          `json:"rooms"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Author       *UserSummary `json:"author,omitempty"`
	Bookings     []Booking    `json:"bookings"`
	Comments     []Comment    `json:"comments"`
	Images       []Image      `json:"images"`
}

// Image is a picture attached to an Ad.
type Image struct {
	ID      uint64 `json:"id"`
	AdID    uint64 `json:"ad_id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Validate checks the writable fields.
func (a *Ad) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleRequired
	}
	if a.Price <= 0 {
		return ErrInvalidPrice
	}
	if a.Rooms <= 0 {
		return ErrInvalidRooms
	}
	return nil
}

// HasBookings reports whether any booking is attached.
func (a *Ad) HasBookings() bool { return len(a.Bookings) > 0 }

// NotAvailableDays returns the days already taken by the ad's bookings.
func (a *Ad) NotAvailableDays() DaySet {
	return BlockedDays(a.Bookings)
}

// AvgRatings is the mean rating of the ad's comments, 0 when there are none.
func (a *Ad) AvgRatings() float64 {
	if len(a.Comments) == 0 {
		return 0
	}
	sum := 0
	for _, c := range a.Comments {
		sum += c.Rating
	}
	return float64(sum) / float64(len(a.Comments))
}

// CommentFromAuthor returns the comment authorID left on the ad, or nil.
func (a *Ad) CommentFromAuthor(authorID uint64) *Comment {
	for i := range a.Comments {
		if a.Comments[i].AuthorID == authorID {
			return &a.Comments[i]
		}
	}
	return nil
}
