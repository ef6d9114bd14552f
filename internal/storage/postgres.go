package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Postgres stores values in PostgreSQL through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects the pool, verifies it and optionally migrates.
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	if opts.URL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres driver")
	}

	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if opts.Migrate {
		// Closing the *sql.DB leaves the pool open.
		db := stdlib.OpenDBFromPool(pool)
		err := runMigrations(db, DriverPostgres)
		db.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool. The schema must already exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM form_values WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO form_values (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) AppendAudit(ctx context.Context, rec AuditRecord) (AuditRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO form_audit (id, action, severity, form_key, storage_key, old_value, new_value,
			rows_affected, ip_address, user_agent, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		toPgUUID(rec.ID), rec.Action, rec.Severity, rec.FormKey, rec.StorageKey,
		toPgText(rec.OldValue), toPgText(rec.NewValue), toPgInt4(rec.Rows),
		toPgText(rec.IPAddress), toPgText(rec.UserAgent), toPgText(rec.Reason),
		pgtype.Timestamptz{Time: rec.CreatedAt, Valid: true},
	)
	if err != nil {
		return AuditRecord{}, fmt.Errorf("insert audit entry: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, action, severity, form_key, storage_key, old_value, new_value,
			rows_affected, ip_address, user_agent, reason, created_at
		FROM form_audit
		WHERE ($1 = '' OR form_key = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		filter.FormKey, filter.limit(), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var (
			id                                 pgtype.UUID
			oldValue, newValue, ip, ua, reason pgtype.Text
			affected                           pgtype.Int4
			created                            pgtype.Timestamptz
			rec                                AuditRecord
		)
		if err := rows.Scan(&id, &rec.Action, &rec.Severity, &rec.FormKey, &rec.StorageKey,
			&oldValue, &newValue, &affected, &ip, &ua, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		rec.ID = uuidToString(id)
		rec.OldValue = oldValue.String
		rec.NewValue = newValue.String
		rec.Rows = int(affected.Int32)
		rec.IPAddress = ip.String
		rec.UserAgent = ua.String
		rec.Reason = reason.String
		rec.CreatedAt = created.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) PurgeAudit(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM form_audit WHERE created_at < $1`,
		pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("purge audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	if i == 0 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
