// Package repository contains data access logic separated from HTTP handlers.
// This file holds the Ad repository: listings plus their owned images.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// AdRepo encapsulates all database queries related to ads and ad_images.
type AdRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewAdRepo constructs an AdRepo for the given handle and SQL dialect.
func NewAdRepo(db *sql.DB, dialect database.Dialect) *AdRepo {
	return &AdRepo{db: db, dialect: dialect}
}

// DB exposes the underlying sql.DB so callers can begin transactions that
// span several repositories.
func (r *AdRepo) DB() *sql.DB { return r.db }

// AdFilter narrows List.  Zero values mean "any".
type AdFilter struct {
	AuthorID uint64
}

const adSelect = `SELECT a.id, a.author_id, a.title, a.price, a.introduction, a.rooms, a.content,
	a.created_at, a.updated_at, u.first_name, u.last_name
	FROM ads a JOIN users u ON u.id = a.author_id`

func scanAd(sc interface{ Scan(...any) error }) (model.Ad, error) {
	var (
		a     model.Ad
		first string
		last  string
	)
	err := sc.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Price, &a.Introduction, &a.Rooms, &a.Content,
		&a.CreatedAt, &a.UpdatedAt, &first, &last)
	if err != nil {
		return a, err
	}
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	a.Author = &model.UserSummary{ID: a.AuthorID, FirstName: first, LastName: last}
	return a, nil
}

// Create inserts the ad and its images in one transaction.  On success the
// generated IDs and timestamps are set on a and its images.
func (r *AdRepo) Create(ctx context.Context, a *model.Ad) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO ads (author_id, title, price, introduction, rooms, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AuthorID, a.Title, a.Price, a.Introduction, a.Rooms, a.Content, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.CreatedAt, a.UpdatedAt = now, now
	return r.insertImages(ctx, tx, a.ID, a.Images)
}

// Update writes the mutable columns.  When images is non-nil the stored set
// is replaced by it; nil leaves images untouched.
func (r *AdRepo) Update(ctx context.Context, a *model.Ad, images []model.Image) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE ads SET title = ?, price = ?, introduction = ?, rooms = ?, content = ?, updated_at = ?
		 WHERE id = ?`,
		a.Title, a.Price, a.Introduction, a.Rooms, a.Content, now, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdNotFound
	}
	a.UpdatedAt = now
	if images == nil {
		return nil
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM ad_images WHERE ad_id = ?`, a.ID); err != nil {
		return err
	}
	a.Images = images
	return r.insertImages(ctx, tx, a.ID, a.Images)
}

func (r *AdRepo) insertImages(ctx context.Context, tx *sql.Tx, adID uint64, images []model.Image) error {
	for i := range images {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO ad_images (ad_id, url, caption) VALUES (?, ?, ?)`,
			adID, images[i].URL, images[i].Caption)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		images[i].ID = uint64(id)
		images[i].AdID = adID
	}
	return nil
}

// GetByID fetches an ad with its author and images.  Bookings and comments
// are left empty; see the booking and comment repositories.
func (r *AdRepo) GetByID(ctx context.Context, id uint64) (*model.Ad, error) {
	a, err := scanAd(r.db.QueryRowContext(ctx, adSelect+` WHERE a.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	images, err := r.imagesFor(ctx, []uint64{a.ID})
	if err != nil {
		return nil, err
	}
	a.Images = nonNilImages(images[a.ID])
	return &a, nil
}

// List returns ads ordered by id with their images attached.
func (r *AdRepo) List(ctx context.Context, f AdFilter) ([]model.Ad, error) {
	q := adSelect
	var args []any
	if f.AuthorID != 0 {
		q += ` WHERE a.author_id = ?`
		args = append(args, f.AuthorID)
	}
	q += ` ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uint64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Images = nonNilImages(images[out[i].ID])
	}
	return out, nil
}

// imagesFor loads images of several ads with one IN query.
func (r *AdRepo) imagesFor(ctx context.Context, adIDs []uint64) (map[uint64][]model.Image, error) {
	args := make([]any, len(adIDs))
	for i, id := range adIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ad_id, url, caption FROM ad_images WHERE ad_id IN (`+placeholders(len(adIDs))+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.Image, len(adIDs))
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.ID, &img.AdID, &img.URL, &img.Caption); err != nil {
			return nil, err
		}
		out[img.AdID] = append(out[img.AdID], img)
	}
	return out, rows.Err()
}

func nonNilImages(in []model.Image) []model.Image {
	if in == nil {
		return []model.Image{}
	}
	return in
}

// AdRow is the slice of an ad the booking guard needs.
type AdRow struct {
	ID       uint64
	AuthorID uint64
	Price    int
}

// GetForUpdateTx reads the ad inside tx and, on MySQL, locks its row until
// the transaction ends so concurrent bookings of the same ad serialize.
func (r *AdRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (AdRow, error) {
	var row AdRow
	err := tx.QueryRowContext(ctx,
		`SELECT id, author_id, price FROM ads WHERE id = ?`+r.dialect.ForUpdate(), id,
	).Scan(&row.ID, &row.AuthorID, &row.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return row, ErrAdNotFound
	}
	return row, err
}

// CountBookingsTx returns how many bookings reference the ad.
func (r *AdRepo) CountBookingsTx(ctx context.Context, tx *sql.Tx, id uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE ad_id = ?`, id).Scan(&n)
	return n, err
}

// DeleteTx removes the ad with its comments and images.  Bookings are never
// removed here: the bookings foreign key has no cascade, so an ad that still
// has one makes the delete fail.
func (r *AdRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	for _, q := range []string{
		`DELETE FROM comments WHERE ad_id = ?`,
		`DELETE FROM ad_images WHERE ad_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdNotFound
	}
	return nil
}
