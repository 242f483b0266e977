package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/database/databasetest"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/queue"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

type recorder struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	users    *repository.UserRepo
	ads      *repository.AdRepo
	bookings *repository.BookingRepo
	adSvc    *AdService
	bookSvc  *BookingService
	events   *recorder
	cache    *AvailabilityCache
	user     model.User
	ad       model.Ad
}

func setup(t *testing.T) *env {
	db := databasetest.Open(t)
	e := &env{
		users:    repository.NewUserRepo(db),
		ads:      repository.NewAdRepo(db, database.SQLite),
		bookings: repository.NewBookingRepo(db),
		events:   &recorder{},
		cache:    NewAvailabilityCache(100, time.Minute),
	}
	t.Cleanup(e.cache.Stop)
	comments := repository.NewCommentRepo(db)
	e.adSvc = NewAdService(e.ads, e.bookings, comments, e.cache, e.events)
	e.bookSvc = NewBookingService(e.ads, e.bookings, e.cache, e.events)
	e.bookSvc.Now = func() time.Time { return time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	e.user = model.User{Email: "host@example.com", FirstName: "Host", LastName: "One"}
	require.NoError(t, e.users.Create(ctx, &e.user, "pw", bcrypt.MinCost))
	e.ad = model.Ad{AuthorID: e.user.ID, Title: "Cabin", Price: 100, Introduction: "i", Rooms: 2, Content: "c"}
	require.NoError(t, e.ads.Create(ctx, &e.ad))
	return e
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *env) newBooking(start, end string) *model.Booking {
	return &model.Booking{AdID: e.ad.ID, AuthorID: e.user.ID, StartDate: date(start), EndDate: date(end)}
}

func TestCreateBookingComputesAmount(t *testing.T) {
	e := setup(t)
	b := e.newBooking("2024-01-10", "2024-01-12")

	require.NoError(t, e.bookSvc.Create(context.Background(), b))

	assert.NotZero(t, b.ID)
	assert.Equal(t, 200, b.Amount)
	assert.Equal(t, time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC), b.CreatedAt)
	assert.Equal(t, []string{queue.BookingCreated}, e.events.types())
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	require.NoError(t, e.bookSvc.Create(ctx, e.newBooking("2024-01-10", "2024-01-12")))

	err := e.bookSvc.Create(ctx, e.newBooking("2024-01-12", "2024-01-14"))
	assert.ErrorIs(t, err, ErrDatesUnavailable)

	list, err := e.bookings.List(ctx, repository.BookingFilter{AdID: e.ad.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected booking must not be persisted")

	require.NoError(t, e.bookSvc.Create(ctx, e.newBooking("2024-01-13", "2024-01-15")))
}

func TestCreateBookingOtherAdDoesNotBlock(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	other := model.Ad{AuthorID: e.user.ID, Title: "Villa", Price: 300, Introduction: "i", Rooms: 5, Content: "c"}
	require.NoError(t, e.ads.Create(ctx, &other))

	require.NoError(t, e.bookSvc.Create(ctx, e.newBooking("2024-01-10", "2024-01-12")))
	b := &model.Booking{AdID: other.ID, AuthorID: e.user.ID, StartDate: date("2024-01-10"), EndDate: date("2024-01-12")}
	require.NoError(t, e.bookSvc.Create(ctx, b))
	assert.Equal(t, 600, b.Amount)
}

func TestCreateBookingValidation(t *testing.T) {
	e := setup(t)
	err := e.bookSvc.Create(context.Background(), e.newBooking("2024-01-12", "2024-01-10"))
	assert.ErrorIs(t, err, model.ErrInvalidDateRange)

	missing := &model.Booking{AdID: 999, AuthorID: e.user.ID, StartDate: date("2024-01-10"), EndDate: date("2024-01-11")}
	assert.ErrorIs(t, e.bookSvc.Create(context.Background(), missing), repository.ErrAdNotFound)
}

func TestUpdateBookingIgnoresItself(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.newBooking("2024-01-10", "2024-01-12")
	require.NoError(t, e.bookSvc.Create(ctx, b))
	other := e.newBooking("2024-01-20", "2024-01-22")
	require.NoError(t, e.bookSvc.Create(ctx, other))

	b.EndDate = date("2024-01-13")
	require.NoError(t, e.bookSvc.Update(ctx, b, b.AdID))
	assert.Equal(t, 200, b.Amount, "stored amount is kept on update")

	b.EndDate = date("2024-01-21")
	assert.ErrorIs(t, e.bookSvc.Update(ctx, b, b.AdID), ErrDatesUnavailable)

	stored, err := e.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", model.DayKey(stored.EndDate))
}

func TestDeleteAdGuard(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.newBooking("2024-01-10", "2024-01-12")
	require.NoError(t, e.bookSvc.Create(ctx, b))

	assert.ErrorIs(t, e.adSvc.Delete(ctx, e.ad.ID, e.user.ID), ErrAdHasBookings)
	_, err := e.ads.GetByID(ctx, e.ad.ID)
	require.NoError(t, err, "ad must remain")

	require.NoError(t, e.bookSvc.Delete(ctx, b))
	require.NoError(t, e.adSvc.Delete(ctx, e.ad.ID, e.user.ID))
	_, err = e.ads.GetByID(ctx, e.ad.ID)
	assert.ErrorIs(t, err, repository.ErrAdNotFound)

	assert.Equal(t, []string{queue.BookingCreated, queue.BookingDeleted, queue.AdDeleted}, e.events.types())
	assert.ErrorIs(t, e.adSvc.Delete(ctx, e.ad.ID, e.user.ID), repository.ErrAdNotFound)
}

func TestNotAvailableDaysCachedAndInvalidated(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	days, err := e.adSvc.NotAvailableDays(ctx, e.ad.ID)
	require.NoError(t, err)
	assert.Empty(t, days)

	require.NoError(t, e.bookSvc.Create(ctx, e.newBooking("2024-01-10", "2024-01-11")))
	_, cached := e.cache.Get(e.ad.ID)
	assert.False(t, cached, "booking write drops the cached entry")

	days, err = e.adSvc.NotAvailableDays(ctx, e.ad.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-10", "2024-01-11"}, days)
	cachedDays, cached := e.cache.Get(e.ad.ID)
	assert.True(t, cached)
	assert.Equal(t, days, cachedDays)

	_, err = e.adSvc.NotAvailableDays(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrAdNotFound)
}

func TestAdDetail(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	require.NoError(t, e.bookSvc.Create(ctx, e.newBooking("2024-01-10", "2024-01-11")))

	ad, err := e.adSvc.Detail(ctx, e.ad.ID)
	require.NoError(t, err)
	assert.Len(t, ad.Bookings, 1)
	assert.Empty(t, ad.Comments)
	assert.Equal(t, "Host", ad.Author.FirstName)
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *AvailabilityCache
	c.Set(1, c.Version(1), []string{"x"})
	_, ok := c.Get(1)
	assert.False(t, ok)
	c.Invalidate(1)
	c.Stop()
}

func TestAvailabilityCacheDropsStaleSet(t *testing.T) {
	c := NewAvailabilityCache(10, time.Minute)
	t.Cleanup(c.Stop)

	before := c.Version(7)
	c.Invalidate(7)
	c.Set(7, before, []string{"2024-01-10"})
	_, ok := c.Get(7)
	assert.False(t, ok, "a value read before an invalidation must not be stored")

	now := c.Version(7)
	c.Set(7, now, []string{"2024-01-11"})
	days, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, []string{"2024-01-11"}, days)

	c.Invalidate(7)
	_, ok = c.Get(7)
	assert.False(t, ok)
}
