package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"findash/internal/core"
)

// Backup writes a consistent snapshot of the whole database to dest using
// VACUUM INTO, which serializes against writers so concurrent reads cannot
// observe a torn copy. Dest's extension is replaced with ".db"; an existing
// file at the destination is overwritten. Returns the final path written.
func (s *Store) Backup(ctx context.Context, dest string) (string, error) {
	// Replace whatever extension the caller gave with ".db".
	target := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".db"
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("replace existing backup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		return "", fmt.Errorf("vacuum into backup: %w", err)
	}

	slog.InfoContext(ctx, "Database backed up", "source", s.path, "target", target)
	return target, nil
}

// Restore replaces the live database file with the backup at src: the pool
// is closed so no connection survives the swap, the backup is copied next to
// the live file and renamed over it, then a fresh pool opens against the
// restored file and migrations re-run so it satisfies the same schema
// invariants as a fresh store. A failure before the rename leaves the live
// data untouched.
func (s *Store) Restore(ctx context.Context, src string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return core.NotFound("backup file", src)
	} else if err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}

	// Reject files that are not a ledger database before touching live data.
	backup, err := openDB(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	var tables int
	err = backup.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'transactions'`).
		Scan(&tables)
	backup.Close()
	if err != nil {
		return fmt.Errorf("inspect backup: %w", err)
	}
	if tables == 0 {
		return core.Validationf("%s is not a ledger backup", src)
	}

	// Stage the copy next to the live file so the final swap is a rename.
	staged := s.path + ".restore"
	if err := copyFile(src, staged); err != nil {
		return fmt.Errorf("stage backup copy: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(staged)
		return fmt.Errorf("close live database: %w", err)
	}
	if err := os.Rename(staged, s.path); err != nil {
		os.Remove(staged)
		return fmt.Errorf("swap in backup: %w", err)
	}

	db, err := openDB(s.path)
	if err != nil {
		return fmt.Errorf("reopen restored database: %w", err)
	}
	s.db = db

	// Schema setup is idempotent; a no-change run is fine.
	if err := RunMigrations(s.path); err != nil {
		return fmt.Errorf("re-apply schema after restore: %w", err)
	}

	slog.InfoContext(ctx, "Database restored", "source", src, "target", s.path)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
