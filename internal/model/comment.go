package model

import (
	"strings"
	"time"
)

// Comment is a guest review of an Ad.  By convention a user comments on an
// ad once; the database does not enforce it.
type Comment struct {
	ID        uint64       `json:"id"`
	AdID      uint64       `json:"ad_id"`
	AuthorID  uint64       `json:"author_id"`
	Content   string       `json:"content"`
	Rating    int          `json:"rating"`
	CreatedAt time.Time    `json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

// Validate checks content and rating bounds.
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return ErrBlankContent
	}
	if c.Rating < 1 || c.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// PrePersist sets CreatedAt on first save.
func (c *Comment) PrePersist(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now.UTC()
	}
}
