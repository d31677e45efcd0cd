package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"audioink/internal/config"
	"audioink/internal/services"
)

// Store manages transcription history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database under the data dir.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const entryColumns = "id, source_name, source_type, text, word_count, char_count, audio_seconds, processing_seconds, model, language, created_at"

// Append records a completed transcription. A missing id or timestamp is
// assigned, and word/char counts are recomputed from the text.
func (s *Store) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("nil history entry")
	}
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.SourceType == "" {
		entry.SourceType = SourceFile
	}
	entry.CountText()

	_, err := s.execWithRetry(ctx,
		"INSERT INTO history ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		entry.ID,
		entry.SourceName,
		string(entry.SourceType),
		entry.Text,
		entry.WordCount,
		entry.CharCount,
		entry.AudioDuration.Seconds(),
		entry.ProcessingTime.Seconds(),
		nullableString(entry.Model),
		nullableString(entry.Language),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// List returns entries newest first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + entryColumns + " FROM history ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Get returns one entry by id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM history WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrNotFound, "history", "get", id, nil)
		}
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// Delete removes one entry by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "history", "delete", id, nil)
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id                string
		sourceName        string
		sourceType        string
		text              string
		wordCount         int
		charCount         int
		audioSeconds      float64
		processingSeconds float64
		model             sql.NullString
		lang              sql.NullString
		createdRaw        string
	)
	if err := scanner.Scan(
		&id,
		&sourceName,
		&sourceType,
		&text,
		&wordCount,
		&charCount,
		&audioSeconds,
		&processingSeconds,
		&model,
		&lang,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             id,
		SourceName:     sourceName,
		SourceType:     SourceType(sourceType),
		Text:           text,
		WordCount:      wordCount,
		CharCount:      charCount,
		AudioDuration:  time.Duration(audioSeconds * float64(time.Second)),
		ProcessingTime: time.Duration(processingSeconds * float64(time.Second)),
		Model:          model.String,
		Language:       lang.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
