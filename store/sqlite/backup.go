package sqlite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/medstock/inventory-engine/ledger"
)

// sqliteHeader is the first 16 bytes of every SQLite 3 database file.
var sqliteHeader = []byte("SQLite format 3\x00")

// Backup writes a byte-for-byte copy of the database file to dst.
//
// The WAL is checkpointed into the main file first. The write lock is held
// for the whole copy so no write can interleave.
func (s *Store) Backup(ctx context.Context, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	if s.path == MemoryPath {
		return fmt.Errorf("backup: in-memory database has no file")
	}
	if dst == "" {
		return fmt.Errorf("backup: destination path is required")
	}

	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("backup: checkpoint: %w", err)
	}

	if err := copyFile(s.path, dst); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// ValidateBackup checks that src can be restored: it must exist, carry the
// .db extension and start with the SQLite header.
func ValidateBackup(src string) error {
	if !strings.EqualFold(filepath.Ext(src), ".db") {
		return fmt.Errorf("%w: %s: expected a .db file", ledger.ErrInvalidBackup, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidBackup, err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("%w: %s is not a SQLite database", ledger.ErrInvalidBackup, src)
	}
	return nil
}

// Restore replaces the database file with a copy of src.
//
// The store is closed first. Closing checkpoints the WAL, so the stale -wal
// and -shm files are removed before the copy and cannot be replayed over the
// restored data. On success the store stays closed and callers must reopen
// (the server restarts its process). On failure the original file is still
// in place and the store is reopened on it.
func (s *Store) Restore(src string) error {
	if err := ValidateBackup(src); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	if s.path == MemoryPath {
		return fmt.Errorf("restore: in-memory database has no file")
	}
	if err := s.closeLocked(); err != nil {
		return s.abortRestore(fmt.Errorf("restore: close: %w", err))
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
			return s.abortRestore(fmt.Errorf("restore: remove %s: %w", suffix, err))
		}
	}
	if err := copyFile(src, s.path); err != nil {
		return s.abortRestore(fmt.Errorf("restore: %w", err))
	}
	return nil
}

// abortRestore reopens the original file after a failed restore.
func (s *Store) abortRestore(cause error) error {
	if err := s.reopenLocked(); err != nil {
		return errors.Join(cause, fmt.Errorf("restore: reopen: %w", err))
	}
	return cause
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
