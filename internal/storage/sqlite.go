package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// sqliteTime keeps timestamps sortable as text.
const sqliteTime = "2006-01-02 15:04:05.000000000"

// SQLite stores values in a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at opts.Path.
func OpenSQLite(ctx context.Context, opts Options) (*SQLite, error) {
	if opts.Path == "" {
		return nil, errors.New("SQLITE_PATH is required for the sqlite driver")
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", opts.Path, err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if opts.Migrate {
		if err := runMigrations(db, DriverSQLite); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM form_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO form_values (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(sqliteTime))
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) AppendAudit(ctx context.Context, rec AuditRecord) (AuditRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO form_audit (id, action, severity, form_key, storage_key, old_value, new_value,
			rows_affected, ip_address, user_agent, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Action, rec.Severity, rec.FormKey, rec.StorageKey,
		nullString(rec.OldValue), nullString(rec.NewValue), nullInt(rec.Rows),
		nullString(rec.IPAddress), nullString(rec.UserAgent), nullString(rec.Reason),
		rec.CreatedAt.Format(sqliteTime),
	)
	if err != nil {
		return AuditRecord{}, fmt.Errorf("insert audit entry: %w", err)
	}
	return rec, nil
}

func (s *SQLite) ListAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, severity, form_key, storage_key, old_value, new_value,
			rows_affected, ip_address, user_agent, reason, created_at
		FROM form_audit
		WHERE (? = '' OR form_key = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		filter.FormKey, filter.FormKey, filter.limit(), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var (
			oldValue, newValue, ip, ua, reason sql.NullString
			affected                           sql.NullInt64
			created                            string
			rec                                AuditRecord
		)
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.Severity, &rec.FormKey, &rec.StorageKey,
			&oldValue, &newValue, &affected, &ip, &ua, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		rec.OldValue = oldValue.String
		rec.NewValue = newValue.String
		rec.Rows = int(affected.Int64)
		rec.IPAddress = ip.String
		rec.UserAgent = ua.String
		rec.Reason = reason.String
		if rec.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
			return nil, fmt.Errorf("parse audit time %q: %w", created, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) PurgeAudit(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM form_audit WHERE created_at < ?`,
		cutoff.UTC().Format(sqliteTime))
	if err != nil {
		return 0, fmt.Errorf("purge audit entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
