
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Content statuses. approved -> publishing is an optimistic claim taken by the
// publisher; a row stuck in publishing after a crash can be released manually.
const (
	ContentDraft      = "draft"
	ContentPending    = "pending_approval"
	ContentApproved   = "approved"
	ContentPublishing = "publishing"
	ContentPublished  = "published"
	ContentRejected   = "rejected"
)

type Content struct {
	ID        int64
	BookID    sql.NullInt64
	Type      string
	Text      string
	Caption   string
	FileID    string
	MessageID int
	IsManual  bool
	UseCover  bool
	Status    string

	CreatedDate        int64
	ApprovedDate       sql.NullInt64
	PublishedDate      sql.NullInt64
	PublishedMessageID sql.NullInt64

	// Joined from books for display; empty for bookless rows.
	BookTitle  string
	BookAuthor string
}

type NewContent struct {
	BookID    int64 // 0 for bookless content
	Type      string
	Text      string
	Caption   string
	FileID    string
	MessageID int
	IsManual  bool
	UseCover  bool
	Status    string // defaults to draft
}

const contentCols = `c.id,c.book_id,c.type,c.text,c.caption,c.file_id,c.message_id,c.is_manual,c.use_cover,c.status,
	c.created_date,c.approved_date,c.published_date,c.published_message_id,
	COALESCE(b.title,''),COALESCE(b.author,'')`

func scanContent(row interface{ Scan(...any) error }) (Content, error) {
	var c Content
	var isManual, useCover int
	err := row.Scan(&c.ID, &c.BookID, &c.Type, &c.Text, &c.Caption, &c.FileID, &c.MessageID,
		&isManual, &useCover, &c.Status,
		&c.CreatedDate, &c.ApprovedDate, &c.PublishedDate, &c.PublishedMessageID,
		&c.BookTitle, &c.BookAuthor)
	if err != nil {
		return Content{}, err
	}
	c.IsManual = isManual == 1
	c.UseCover = useCover == 1
	return c, nil
}

func (d *DB) AddContent(ctx context.Context, n NewContent) (int64, error) {
	status := n.Status
	if status == "" {
		status = ContentDraft
	}
	var bookID any
	if n.BookID != 0 {
		bookID = n.BookID
	}
	isManual := 0
	if n.IsManual {
		isManual = 1
	}
	useCover := 0
	if n.UseCover {
		useCover = 1
	}
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO content(book_id,type,text,caption,file_id,message_id,is_manual,use_cover,status,created_date)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		bookID, n.Type, n.Text, n.Caption, n.FileID, n.MessageID, isManual, useCover, status, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) GetContent(ctx context.Context, id int64) (Content, error) {
	return scanContent(d.sql.QueryRowContext(ctx,
		`SELECT `+contentCols+` FROM content c LEFT JOIN books b ON b.id=c.book_id WHERE c.id=?`, id))
}

func (d *DB) ListContentByStatus(ctx context.Context, status string, limit, offset int) ([]Content, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+contentCols+` FROM content c LEFT JOIN books b ON b.id=c.book_id
		 WHERE c.status=? ORDER BY c.created_date DESC, c.id DESC LIMIT ? OFFSET ?`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) CountContentByStatus(ctx context.Context, status string) (int, error) {
	var c int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM content WHERE status=?`, status).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// ApproveContent moves a row into approved and stamps the approval time. Only
// draft and pending rows are eligible.
func (d *DB) ApproveContent(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE content SET status=?, approved_date=? WHERE id=? AND status IN (?,?)`,
		ContentApproved, time.Now().Unix(), id, ContentDraft, ContentPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("content %d is not awaiting approval", id)
	}
	return nil
}

func (d *DB) RejectContent(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE content SET status=? WHERE id=?`, ContentRejected, id)
	return err
}

// ClaimForPublish atomically moves an approved row into publishing. The false
// return means someone else holds the claim (or the row is not approved), so
// the same row is never published twice by concurrent triggers.
func (d *DB) ClaimForPublish(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE content SET status=? WHERE id=? AND status=?`, ContentPublishing, id, ContentApproved)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseClaim reverts a failed publish back to approved.
func (d *DB) ReleaseClaim(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE content SET status=? WHERE id=? AND status=?`, ContentApproved, id, ContentPublishing)
	return err
}

// MarkPublished finalizes a claimed row with the channel message id.
func (d *DB) MarkPublished(ctx context.Context, id int64, messageID int, at time.Time) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE content SET status=?, published_date=?, published_message_id=? WHERE id=? AND status=?`,
		ContentPublished, at.Unix(), messageID, id, ContentPublishing)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("content %d lost its publish claim", id)
	}
	return nil
}

func (d *DB) DeleteContent(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM content WHERE id=?`, id)
	return err
}

// ErrNotFound reports whether err is the no-rows sentinel from a lookup.
func ErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
