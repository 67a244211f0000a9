package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// schema is applied statement by statement on open. The partial unique index is the
// only concurrency guard: one live record per message id, enforced at write time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		message_id TEXT NOT NULL,
		prompt TEXT NOT NULL DEFAULT '',
		prompt_folded TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		user_name TEXT NOT NULL DEFAULT '',
		user_display TEXT NOT NULL DEFAULT '',
		guild_id TEXT NOT NULL DEFAULT '',
		guild_name TEXT NOT NULL DEFAULT '',
		channel_name TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS interactions_live_message
		ON interactions(message_id) WHERE deleted = 0`,
	`CREATE INDEX IF NOT EXISTS interactions_scope_created
		ON interactions(channel_name, deleted, created_at DESC)`,
	`CREATE TRIGGER IF NOT EXISTS interactions_immutable
		BEFORE UPDATE OF filename, created_at ON interactions
		WHEN NEW.filename IS NOT OLD.filename OR NEW.created_at IS NOT OLD.created_at
		BEGIN SELECT RAISE(ABORT, 'filename and created_at are immutable'); END`,
}

const recordColumns = `id, message_id, prompt, user_id, user_name, user_display,
	guild_id, guild_name, channel_name, filename, created_at, updated_at, deleted`

// SQLiteStore persists interaction records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open creates (or opens) the database at path and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// InsertIfAbsent implements ports.RecordStore.
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, record domain.InteractionRecord) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO interactions
		(id, message_id, prompt, prompt_folded, user_id, user_name, user_display,
		 guild_id, guild_name, channel_name, filename, created_at, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT DO NOTHING`,
		id.String(),
		record.CorrelationKey,
		record.Prompt,
		fold(record.Prompt),
		record.Author.PlatformUserID,
		record.Author.GlobalName,
		record.Author.DisplayName,
		record.Channel.GuildID,
		record.Channel.GuildName,
		record.Channel.ChannelName,
		record.ImageFile,
		record.CreatedAt.UTC().UnixNano(),
		record.UpdatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	if n == 0 {
		return "", domain.ErrConflict
	}
	return id.String(), nil
}

// SoftDeleteByCorrelationKey implements ports.RecordStore.
func (s *SQLiteStore) SoftDeleteByCorrelationKey(ctx context.Context, key string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET deleted = 1, updated_at = ? WHERE message_id = ? AND deleted = 0`,
		now.UTC().UnixNano(), key)
	if err != nil {
		return false, fmt.Errorf("soft delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete: %w", err)
	}
	return n > 0, nil
}

// Search implements ports.RecordStore. The total count comes back with the window
// through a window function, so one round trip serves both unless the window is empty.
func (s *SQLiteStore) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchPage, error) {
	where, args := searchFilter(query)

	stmt := "SELECT " + recordColumns + ", COUNT(*) OVER () FROM interactions" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, stmt, append(args, query.PageSize, query.Offset())...)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	page := domain.SearchPage{Items: []domain.InteractionRecord{}}
	for rows.Next() {
		var total int
		rec, err := scanRecord(rows, &total)
		if err != nil {
			return domain.SearchPage{}, err
		}
		page.TotalCount = total
		page.Items = append(page.Items, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.SearchPage{}, fmt.Errorf("search records: %w", err)
	}

	if len(page.Items) == 0 && query.Offset() > 0 {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interactions"+where, args...).Scan(&page.TotalCount); err != nil {
			return domain.SearchPage{}, fmt.Errorf("count records: %w", err)
		}
	}
	return page, nil
}

func searchFilter(query domain.SearchQuery) (string, []interface{}) {
	builder := strings.Builder{}
	builder.WriteString(" WHERE deleted = 0")
	var args []interface{}
	if query.ScopeFilter != "" {
		builder.WriteString(" AND channel_name = ?")
		args = append(args, query.ScopeFilter)
	}
	if query.Substring != "" {
		builder.WriteString(" AND instr(prompt_folded, ?) > 0")
		args = append(args, fold(query.Substring))
	}
	return builder.String(), args
}

// FindByCorrelationKey returns the record for a message id, deleted or not.
// A live record wins over deleted ones; otherwise the newest is returned.
func (s *SQLiteStore) FindByCorrelationKey(ctx context.Context, key string) (domain.InteractionRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+
		" FROM interactions WHERE message_id = ? ORDER BY deleted ASC, created_at DESC LIMIT 1", key)
	rec, err := scanRecord(row, nil)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InteractionRecord{}, domain.ErrNotFound
	}
	return rec, err
}

// Recent returns the newest records across all channels, including deleted ones.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.InteractionRecord, error) {
	stmt := "SELECT " + recordColumns + " FROM interactions ORDER BY created_at DESC, id DESC"
	var args []interface{}
	if limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, stmt, args...)
}

// ExportJSON writes every record, oldest first, to a jsonl file.
func (s *SQLiteStore) ExportJSON(ctx context.Context, dest string) error {
	records, err := s.query(ctx, "SELECT "+recordColumns+" FROM interactions ORDER BY created_at ASC, id ASC")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, stmt string, args ...interface{}) ([]domain.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.InteractionRecord
	for rows.Next() {
		rec, err := scanRecord(rows, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner, total *int) (domain.InteractionRecord, error) {
	var rec domain.InteractionRecord
	var created, updated int64
	var deleted int
	dest := []interface{}{
		&rec.ID, &rec.CorrelationKey, &rec.Prompt,
		&rec.Author.PlatformUserID, &rec.Author.GlobalName, &rec.Author.DisplayName,
		&rec.Channel.GuildID, &rec.Channel.GuildName, &rec.Channel.ChannelName,
		&rec.ImageFile, &created, &updated, &deleted,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return domain.InteractionRecord{}, err
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	rec.Deleted = deleted == 1
	return rec, nil
}

// fold applies Unicode case folding so "CASTLE", "Castle" and "castle" compare equal.
func fold(s string) string {
	return cases.Fold().String(s)
}

var _ ports.RecordRepository = (*SQLiteStore)(nil)
