
package db

import "context"

// SchedulePattern is an admin-maintained hint for when each kind of post
// should go out. It is informational; publishing itself stays manual.
type SchedulePattern struct {
	ID          int64
	ContentType string
	Hour        int
	Minute      int
	IsActive    bool
}

func (d *DB) AddSchedulePattern(ctx context.Context, contentType string, hour, minute int) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO schedule_pattern(content_type,hour,minute,is_active) VALUES(?,?,?,1)`,
		contentType, hour, minute)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) ListSchedulePatterns(ctx context.Context) ([]SchedulePattern, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id,content_type,hour,minute,is_active FROM schedule_pattern ORDER BY hour,minute,id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SchedulePattern
	for rows.Next() {
		var p SchedulePattern
		var active int
		if err := rows.Scan(&p.ID, &p.ContentType, &p.Hour, &p.Minute, &active); err != nil {
			return nil, err
		}
		p.IsActive = active == 1
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) ToggleSchedulePattern(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE schedule_pattern SET is_active=1-is_active WHERE id=?`, id)
	return err
}

func (d *DB) DeleteSchedulePattern(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM schedule_pattern WHERE id=?`, id)
	return err
}
