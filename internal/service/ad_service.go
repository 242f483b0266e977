package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/queue"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// AdService assembles ad details and guards ad deletion.
type AdService struct {
	Ads      *repository.AdRepo
	Bookings *repository.BookingRepo
	Comments *repository.CommentRepo
	Cache    *AvailabilityCache
	Events   Publisher
}

// NewAdService wires an AdService.  cache and events may be nil.
func NewAdService(ads *repository.AdRepo, bookings *repository.BookingRepo, comments *repository.CommentRepo, cache *AvailabilityCache, events Publisher) *AdService {
	if ads == nil || bookings == nil || comments == nil {
		panic("nil repository passed to NewAdService")
	}
	return &AdService{Ads: ads, Bookings: bookings, Comments: comments, Cache: cache, Events: events}
}

// Detail returns the ad with images, bookings and comments attached.
func (s *AdService) Detail(ctx context.Context, id uint64) (*model.Ad, error) {
	ad, err := s.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Bookings, err = s.Bookings.List(ctx, repository.BookingFilter{AdID: id}); err != nil {
		return nil, err
	}
	if ad.Comments, err = s.Comments.List(ctx, repository.CommentFilter{AdID: id}); err != nil {
		return nil, err
	}
	return ad, nil
}

// NotAvailableDays returns the ad's blocked days in ascending order, served
// from the availability cache when possible.
func (s *AdService) NotAvailableDays(ctx context.Context, id uint64) ([]string, error) {
	if days, ok := s.Cache.Get(id); ok {
		return days, nil
	}
	version := s.Cache.Version(id)
	if _, err := s.Ads.GetByID(ctx, id); err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.List(ctx, repository.BookingFilter{AdID: id})
	if err != nil {
		return nil, err
	}
	days := model.BlockedDays(bookings).Sorted()
	s.Cache.Set(id, version, days)
	return days, nil
}

// Delete removes the ad with its comments and images unless it has at
// least one booking, in which case ErrAdHasBookings is returned and nothing
// changes.  The ad row is locked, then counted and deleted in one
// transaction.
func (s *AdService) Delete(ctx context.Context, id, actorID uint64) error {
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

	// Same row lock as the booking guard, so no booking can commit between
	// the count and the delete.
	if _, err := s.Ads.GetForUpdateTx(ctx, tx, id); err != nil {
		return err
	}
	n, err := s.Ads.CountBookingsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Uint64("ad_id", id).Int("bookings", n).Msg("ad delete refused")
		return ErrAdHasBookings
	}
	if err := s.Ads.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.Cache.Invalidate(id)
	publish(ctx, s.Events, queue.BookingEvent{Type: queue.AdDeleted, AdID: id, UserID: actorID})
	return nil
}
