package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// CommentRepo persists comments.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo returns a CommentRepo bound to db.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

// CommentFilter narrows List.  Zero values mean "any".
type CommentFilter struct {
	AdID     uint64
	AuthorID uint64
}

const commentSelect = `SELECT c.id, c.ad_id, c.author_id, c.content, c.rating, c.created_at,
	u.first_name, u.last_name
	FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(sc interface{ Scan(...any) error }) (model.Comment, error) {
	var (
		c     model.Comment
		first string
		last  string
	)
	if err := sc.Scan(&c.ID, &c.AdID, &c.AuthorID, &c.Content, &c.Rating, &c.CreatedAt, &first, &last); err != nil {
		return c, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.Author = &model.UserSummary{ID: c.AuthorID, FirstName: first, LastName: last}
	return c, nil
}

// Create inserts c and sets its ID.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (ad_id, author_id, content, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.AdID, c.AuthorID, c.Content, c.Rating, c.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites content and rating.
func (r *CommentRepo) Update(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, rating = ? WHERE id = ?`, c.Content, c.Rating, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// GetByID fetches one comment.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns comments matching f, newest first.
func (r *CommentRepo) List(ctx context.Context, f CommentFilter) ([]model.Comment, error) {
	q := commentSelect + ` WHERE 1 = 1`
	var args []any
	if f.AdID != 0 {
		q += ` AND c.ad_id = ?`
		args = append(args, f.AdID)
	}
	if f.AuthorID != 0 {
		q += ` AND c.author_id = ?`
		args = append(args, f.AuthorID)
	}
	q += ` ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes one comment.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
