package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cypherlabdev/data-reconciler-service/internal/fetch"
)

const responseSchema = `
CREATE TABLE IF NOT EXISTS responses (
	key         TEXT PRIMARY KEY,
	status_code INTEGER NOT NULL,
	header      TEXT NOT NULL,
	body        BLOB NOT NULL,
	fetched_at  INTEGER NOT NULL,
	expires_at  INTEGER
);
CREATE INDEX IF NOT EXISTS idx_responses_expires_at ON responses (expires_at);
`

// ResponseStore is the persistent HTTP response cache backed by SQLite. It
// survives restarts so a re-run of a season scrape replays from disk instead
// of hammering the sources again.
type ResponseStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewResponseStore opens (or creates) the cache database at path. ":memory:"
// gives an ephemeral store for tests.
func NewResponseStore(path string, logger zerolog.Logger) (*ResponseStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	// SQLite serializes writers; one connection avoids spurious lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(responseSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create response cache schema: %w", err)
	}

	return &ResponseStore{
		db:     db,
		logger: logger.With().Str("component", "response_store").Logger(),
	}, nil
}

// Get returns the cached response for key, expiring stale entries on read.
func (s *ResponseStore) Get(ctx context.Context, key string) (*fetch.CachedResponse, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT status_code, header, body, fetched_at, expires_at FROM responses WHERE key = ?`, key)

	var (
		statusCode int
		headerJSON string
		body       []byte
		fetchedAt  int64
		expiresAt  sql.NullInt64
	)
	err := row.Scan(&statusCode, &headerJSON, &body, &fetchedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translateSQLiteErr(err)
	}

	if expiresAt.Valid && time.Now().Unix() >= expiresAt.Int64 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to evict expired entry")
		}
		return nil, false, nil
	}

	var header http.Header
	if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return nil, false, nil
	}

	return &fetch.CachedResponse{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		FetchedAt:  time.Unix(fetchedAt, 0).UTC(),
	}, true, nil
}

// Set stores a response with the given lifetime; ttl 0 means the entry never
// expires. A Content-Length header that contradicts the body is rejected with
// fetch.ErrLengthMismatch so the fetch layer can repair and resubmit.
func (s *ResponseStore) Set(ctx context.Context, key string, resp *fetch.CachedResponse, ttl time.Duration) error {
	if declared := resp.Header.Get("Content-Length"); declared != "" {
		n, err := strconv.Atoi(declared)
		if err != nil || n != len(resp.Body) {
			return fetch.ErrLengthMismatch
		}
	}

	headerJSON, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(ttl).Unix(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (key, status_code, header, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		   status_code = excluded.status_code,
		   header      = excluded.header,
		   body        = excluded.body,
		   fetched_at  = excluded.fetched_at,
		   expires_at  = excluded.expires_at`,
		key, resp.StatusCode, string(headerJSON), resp.Body, resp.FetchedAt.Unix(), expiresAt)
	if err != nil {
		return translateSQLiteErr(err)
	}
	return nil
}

// Purge removes every expired entry and reports how many were evicted.
func (s *ResponseStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM responses WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, translateSQLiteErr(err)
	}
	return res.RowsAffected()
}

// Len reports the number of cached responses, expired entries included.
func (s *ResponseStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, translateSQLiteErr(err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *ResponseStore) Close() error {
	return s.db.Close()
}

// translateSQLiteErr maps lock contention to the fetch layer's retryable
// sentinel.
func translateSQLiteErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", fetch.ErrCacheBusy, err)
		}
	}
	return err
}
