package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// BookingRepo persists bookings.  Writes run inside a transaction owned by
// the caller so the availability check and the insert see the same rows.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List.  Zero values mean "any".
type BookingFilter struct {
	AdID     uint64
	AuthorID uint64
}

const bookingSelect = `SELECT b.id, b.ad_id, b.author_id, b.start_date, b.end_date, b.created_at,
	b.amount, b.comment, u.first_name, u.last_name
	FROM bookings b JOIN users u ON u.id = b.author_id`

func scanBooking(sc interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b       model.Booking
		comment sql.NullString
		first   string
		last    string
	)
	err := sc.Scan(&b.ID, &b.AdID, &b.AuthorID, &b.StartDate, &b.EndDate, &b.CreatedAt,
		&b.Amount, &comment, &first, &last)
	if err != nil {
		return b, err
	}
	if comment.Valid {
		s := comment.String
		b.Comment = &s
	}
	b.StartDate, b.EndDate, b.CreatedAt = b.StartDate.UTC(), b.EndDate.UTC(), b.CreatedAt.UTC()
	b.Author = &model.UserSummary{ID: b.AuthorID, FirstName: first, LastName: last}
	return b, nil
}

func listBookings(ctx context.Context, q queryer, f BookingFilter) ([]model.Booking, error) {
	query := bookingSelect + ` WHERE 1 = 1`
	var args []any
	if f.AdID != 0 {
		query += ` AND b.ad_id = ?`
		args = append(args, f.AdID)
	}
	if f.AuthorID != 0 {
		query += ` AND b.author_id = ?`
		args = append(args, f.AuthorID)
	}
	query += ` ORDER BY b.start_date, b.id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// List returns bookings matching f ordered by start date.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	return listBookings(ctx, r.db, f)
}

// ListByAdTx returns every booking of the ad as seen by tx.
func (r *BookingRepo) ListByAdTx(ctx context.Context, tx *sql.Tx, adID uint64) ([]model.Booking, error) {
	return listBookings(ctx, tx, BookingFilter{AdID: adID})
}

// GetByID fetches a single booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts b within tx and sets its ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (ad_id, author_id, start_date, end_date, created_at, amount, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.AdID, b.AuthorID, b.StartDate.UTC(), b.EndDate.UTC(), b.CreatedAt.UTC(), b.Amount, nullString(b.Comment))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateTx rewrites the mutable columns of b within tx.  The author and
// created_at of a booking never change.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET ad_id = ?, start_date = ?, end_date = ?, amount = ?, comment = ? WHERE id = ?`,
		b.AdID, b.StartDate.UTC(), b.EndDate.UTC(), b.Amount, nullString(b.Comment), b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Delete removes a booking.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
