
package db

import (
	"context"
	"time"
)

type Activity struct {
	ID          int64
	UserID      int64
	Action      string
	Detail      string
	CreatedDate int64
}

func (d *DB) LogActivity(ctx context.Context, userID int64, action, detail string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO activity_log(user_id,action,detail,created_date) VALUES(?,?,?,?)`,
		userID, action, detail, time.Now().Unix())
	return err
}

func (d *DB) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id,user_id,action,detail,created_date FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Detail, &a.CreatedDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
