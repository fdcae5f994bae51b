
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupTo creates a consistent SQLite snapshot at dstPath using VACUUM INTO.
// This works even when WAL mode is enabled.
func (d *DB) BackupTo(ctx context.Context, dstPath string) error {
	// Escape single quotes for SQLite string literal
	escaped := strings.ReplaceAll(dstPath, "'", "''")
	_, err := d.sql.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s';", escaped))
	return err
}

// BackupTimestamped snapshots the database into dir with a dated filename and
// returns the created path.
func (d *DB) BackupTimestamped(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	name := fmt.Sprintf("ketabrooz_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(dir, name)
	if err := d.BackupTo(ctx, dst); err != nil {
		return "", err
	}
	return dst, nil
}
