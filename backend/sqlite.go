package backend

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type sqliteBackend struct {
	db        *sql.DB
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Backend = (*sqliteBackend)(nil)

// NewSQLite returns a Backend persisted in a SQLite database using
// modernc.org/sqlite (pure Go, no CGO). If dbPath is empty or ":memory:",
// an in-memory database is used. Expired entries are dropped lazily on
// read and by a background sweeper at the configured interval.
func NewSQLite(parent context.Context, dbPath string, opts ...Option) (Backend, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	// WAL mode for concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &Error{Op: "open", Err: err}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, &Error{Op: "open", Err: err}
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_expires_at ON entries(expires_at)`); err != nil {
		db.Close()
		return nil, &Error{Op: "open", Err: err}
	}

	ctx, cancel := context.WithCancel(parent)
	b := &sqliteBackend{
		db:     db,
		ctx:    ctx,
		cancel: cancel,
		cfg:    applyOptions(opts),
	}
	b.waitGroup.Add(1)
	go b.run()
	return b, nil
}

func (b *sqliteBackend) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, b.cfg.queryTimeout)
}

func (b *sqliteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	var data []byte
	var expiresAt int64
	err := b.db.QueryRowContext(qctx,
		`SELECT value, expires_at FROM entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}
	if expiresAt != 0 && expiresAt < time.Now().UnixNano() {
		// Lazily drop the expired entry.
		_, _ = b.db.ExecContext(qctx, `DELETE FROM entries WHERE key = ?`, key)
		return nil, false, nil
	}
	return data, true, nil
}

func (b *sqliteBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	_, err := b.db.ExecContext(qctx,
		`INSERT INTO entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// likePattern escapes LIKE metacharacters in prefix so it matches
// literally, then appends the wildcard.
func likePattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

func (b *sqliteBackend) Clear(ctx context.Context, prefix, key string) (int, error) {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	var res sql.Result
	var err error
	switch {
	case key != "":
		res, err = b.db.ExecContext(qctx, `DELETE FROM entries WHERE key = ?`, key)
	case prefix != "":
		res, err = b.db.ExecContext(qctx, `DELETE FROM entries WHERE key LIKE ? ESCAPE '\'`, likePattern(prefix))
	default:
		res, err = b.db.ExecContext(qctx, `DELETE FROM entries`)
	}
	if err != nil {
		return 0, &Error{Op: "clear", Key: key, Err: err}
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, &Error{Op: "clear", Key: key, Err: err}
	}
	return int(removed), nil
}

func (b *sqliteBackend) Close(_ context.Context) error {
	var dbErr error
	b.once.Do(func() {
		b.cancel()
		b.waitGroup.Wait()
		dbErr = b.db.Close()
	})
	return dbErr
}

func (b *sqliteBackend) run() {
	defer b.waitGroup.Done()
	ticker := time.NewTicker(b.cfg.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			_, _ = b.db.Exec(`DELETE FROM entries WHERE expires_at != 0 AND expires_at < ?`, time.Now().UnixNano())
		}
	}
}
