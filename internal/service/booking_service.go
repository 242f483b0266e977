package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/queue"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// BookingService guards booking writes: a booking is persisted only when
// none of its days is already taken on the same ad.
type BookingService struct {
	Ads      *repository.AdRepo
	Bookings *repository.BookingRepo
	Cache    *AvailabilityCache
	Events   Publisher
	Now      func() time.Time
}

// NewBookingService wires a BookingService.  cache and events may be nil.
func NewBookingService(ads *repository.AdRepo, bookings *repository.BookingRepo, cache *AvailabilityCache, events Publisher) *BookingService {
	if ads == nil || bookings == nil {
		panic("nil repository passed to NewBookingService")
	}
	return &BookingService{Ads: ads, Bookings: bookings, Cache: cache, Events: events, Now: time.Now}
}

// Create validates b, checks availability, fills CreatedAt and Amount and
// inserts it.  ErrDatesUnavailable means nothing was written.
func (s *BookingService) Create(ctx context.Context, b *model.Booking) error {
	if err := s.save(ctx, b, true); err != nil {
		return err
	}
	s.Cache.Invalidate(b.AdID)
	publish(ctx, s.Events, bookingEvent(queue.BookingCreated, b))
	return nil
}

// Update applies the same guard to an existing booking.  previousAdID is the
// ad the booking belonged to before the change so both caches are dropped.
func (s *BookingService) Update(ctx context.Context, b *model.Booking, previousAdID uint64) error {
	if err := s.save(ctx, b, false); err != nil {
		return err
	}
	s.Cache.Invalidate(b.AdID, previousAdID)
	publish(ctx, s.Events, bookingEvent(queue.BookingUpdated, b))
	return nil
}

// Delete removes a booking, freeing its days.
func (s *BookingService) Delete(ctx context.Context, b *model.Booking) error {
	if err := s.Bookings.Delete(ctx, b.ID); err != nil {
		return err
	}
	s.Cache.Invalidate(b.AdID)
	publish(ctx, s.Events, bookingEvent(queue.BookingDeleted, b))
	return nil
}

func (s *BookingService) save(ctx context.Context, b *model.Booking, isNew bool) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := s.Ads.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Locks the ad row on MySQL until commit.
	ad, err := s.Ads.GetForUpdateTx(ctx, tx, b.AdID)
	if err != nil {
		return err
	}
	existing, err := s.Bookings.ListByAdTx(ctx, tx, b.AdID)
	if err != nil {
		return err
	}
	if !model.IsBookable(*b, existing) {
		zerolog.Ctx(ctx).Info().
			Uint64("ad_id", b.AdID).
			Str("start", model.DayKey(b.StartDate)).
			Str("end", model.DayKey(b.EndDate)).
			Msg("booking refused, dates taken")
		return ErrDatesUnavailable
	}

	b.PrePersist(ad.Price, s.Now())
	if isNew {
		err = s.Bookings.CreateTx(ctx, tx, b)
	} else {
		err = s.Bookings.UpdateTx(ctx, tx, b)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func bookingEvent(kind string, b *model.Booking) queue.BookingEvent {
	return queue.BookingEvent{
		Type:      kind,
		BookingID: b.ID,
		AdID:      b.AdID,
		UserID:    b.AuthorID,
		StartDate: model.DayKey(b.StartDate),
		EndDate:   model.DayKey(b.EndDate),
		Amount:    b.Amount,
	}
}
