
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Book statuses.
const (
	BookPending   = "pending"
	BookProcessed = "processed"
	BookFailed    = "failed"
)

type Book struct {
	ID             int64
	Title          string
	Author         string
	Category       string
	Tags           string
	TotalPages     int
	Notes          string
	PDFFileID      string
	PDFMessageID   int
	CoverFileID    string
	CoverMessageID int
	Status         string
	UploadDate     int64
	ProcessedDate  sql.NullInt64
}

const bookCols = `id,title,author,category,tags,total_pages,notes,pdf_file_id,pdf_message_id,cover_file_id,cover_message_id,status,upload_date,processed_date`

func scanBook(row interface{ Scan(...any) error }) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Tags, &b.TotalPages, &b.Notes,
		&b.PDFFileID, &b.PDFMessageID, &b.CoverFileID, &b.CoverMessageID, &b.Status, &b.UploadDate, &b.ProcessedDate)
	return b, err
}

func (d *DB) AddBook(ctx context.Context, title, pdfFileID string, pdfMessageID int) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO books(title,pdf_file_id,pdf_message_id,status,upload_date) VALUES(?,?,?,?,?)`,
		title, pdfFileID, pdfMessageID, BookPending, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) GetBook(ctx context.Context, id int64) (Book, error) {
	return scanBook(d.sql.QueryRowContext(ctx, `SELECT `+bookCols+` FROM books WHERE id=?`, id))
}

// GetBookByFileID looks up a book by its stored PDF file reference. Used for
// ingestion dedupe: re-sending the same document must not create a second row.
func (d *DB) GetBookByFileID(ctx context.Context, fileID string) (Book, bool, error) {
	b, err := scanBook(d.sql.QueryRowContext(ctx, `SELECT `+bookCols+` FROM books WHERE pdf_file_id=?`, fileID))
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, err
	}
	return b, true, nil
}

func (d *DB) ListBooks(ctx context.Context, status string, limit, offset int) ([]Book, error) {
	q := `SELECT ` + bookCols + ` FROM books`
	args := []any{}
	if status != "" {
		q += ` WHERE status=?`
		args = append(args, status)
	}
	q += ` ORDER BY upload_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (d *DB) CountBooks(ctx context.Context, status string) (int, error) {
	q := `SELECT COUNT(1) FROM books`
	args := []any{}
	if status != "" {
		q += ` WHERE status=?`
		args = append(args, status)
	}
	var c int
	if err := d.sql.QueryRowContext(ctx, q, args...).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// ProcessMeta is what PDF processing learned about a book. Re-processing
// overwrites earlier metadata.
type ProcessMeta struct {
	Author     string
	Category   string
	Tags       string
	TotalPages int
	Notes      string
}

func (d *DB) MarkBookProcessed(ctx context.Context, id int64, m ProcessMeta) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE books SET author=?, category=?, tags=?, total_pages=?, notes=?, status=?, processed_date=? WHERE id=?`,
		m.Author, m.Category, m.Tags, m.TotalPages, m.Notes, BookProcessed, time.Now().Unix(), id)
	return err
}

func (d *DB) SetBookCover(ctx context.Context, id int64, fileID string, messageID int) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE books SET cover_file_id=?, cover_message_id=? WHERE id=?`, fileID, messageID, id)
	return err
}

func (d *DB) SetBookTitle(ctx context.Context, id int64, title string) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE books SET title=? WHERE id=?`, title, id)
	return err
}

func (d *DB) SetBookStatus(ctx context.Context, id int64, status string) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE books SET status=? WHERE id=?`, status, id)
	return err
}

func (d *DB) DeleteBook(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	return err
}
