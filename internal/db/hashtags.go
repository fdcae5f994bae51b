
package db

import (
	"context"
	"strings"
	"time"
)

type Hashtag struct {
	ID          int64
	Tag         string
	Type        string
	UsageCount  int
	IsApproved  bool
	CreatedDate int64
}

// NormalizeTag strips a leading # and surrounding whitespace, and replaces
// inner spaces with underscores so the tag stays one token in a post.
func NormalizeTag(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "#")
	t = strings.Join(strings.Fields(t), "_")
	return t
}

// AddHashtag inserts a tag if it is new. Duplicate tags are a silent no-op;
// the returned bool reports whether a row was created.
func (d *DB) AddHashtag(ctx context.Context, tag, tagType string) (bool, error) {
	tag = NormalizeTag(tag)
	if tag == "" {
		return false, nil
	}
	if tagType == "" {
		tagType = "general"
	}
	res, err := d.sql.ExecContext(ctx,
		`INSERT OR IGNORE INTO hashtags(tag,type,is_approved,created_date) VALUES(?,?,0,?)`,
		tag, tagType, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (d *DB) ApproveHashtag(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE hashtags SET is_approved=1 WHERE id=?`, id)
	return err
}

func (d *DB) DeleteHashtag(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM hashtags WHERE id=?`, id)
	return err
}

func (d *DB) ListHashtags(ctx context.Context, approvedOnly bool) ([]Hashtag, error) {
	q := `SELECT id,tag,type,usage_count,is_approved,created_date FROM hashtags`
	if approvedOnly {
		q += ` WHERE is_approved=1`
	}
	q += ` ORDER BY usage_count DESC, created_date DESC`
	rows, err := d.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Hashtag
	for rows.Next() {
		var h Hashtag
		var approved int
		if err := rows.Scan(&h.ID, &h.Tag, &h.Type, &h.UsageCount, &approved, &h.CreatedDate); err != nil {
			return nil, err
		}
		h.IsApproved = approved == 1
		out = append(out, h)
	}
	return out, rows.Err()
}

// ApprovedTags returns up to limit approved tags of a type, most used first,
// newest first within equal usage.
func (d *DB) ApprovedTags(ctx context.Context, tagType string, limit int) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT tag FROM hashtags WHERE is_approved=1 AND type=?
		 ORDER BY usage_count DESC, created_date DESC LIMIT ?`, tagType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BumpTagUsage increments usage counters for tags that went out in a post.
func (d *DB) BumpTagUsage(ctx context.Context, tags []string) error {
	for _, t := range tags {
		t = strings.TrimPrefix(t, "#")
		if _, err := d.sql.ExecContext(ctx, `UPDATE hashtags SET usage_count=usage_count+1 WHERE tag=?`, t); err != nil {
			return err
		}
	}
	return nil
}
