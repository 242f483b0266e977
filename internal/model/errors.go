package model

import "errors"

// Validation errors.  Handlers translate every one of them into 400.
var (
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidPrice     = errors.New("price must be a positive integer")
	ErrInvalidRooms     = errors.New("rooms must be a positive integer")
	ErrInvalidDateRange = errors.New("end_date must be after start_date")
	ErrBlankContent     = errors.New("content must not be blank")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrStayTooLong      = errors.New("stay must not exceed 365 nights")
)

// IsValidation reports whether err is one of the validation errors above.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrTitleRequired, ErrInvalidPrice, ErrInvalidRooms, ErrInvalidDateRange,
		ErrBlankContent, ErrInvalidRating, ErrInvalidAmount, ErrStayTooLong,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
