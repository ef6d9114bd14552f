// Package storage persists form output values and the submit audit trail.
//
// A form's output field is a single string stored under the form's storage
// key, the way the portal kept its configuration values. Three backends share
// the Store interface: PostgreSQL through pgx, SQLite through modernc.org/sqlite
// and an in-memory store for development and tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage closed")

// Store is the persistence boundary of the service.
type Store interface {
	// Get returns the value stored under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// AppendAudit records one audit entry. ID and CreatedAt are filled in
	// when empty.
	AppendAudit(ctx context.Context, rec AuditRecord) (AuditRecord, error)

	// ListAudit returns audit entries newest first.
	ListAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)

	// PurgeAudit deletes audit entries created before cutoff.
	PurgeAudit(ctx context.Context, cutoff time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// AuditRecord is the stored form of an audit entry.
type AuditRecord struct {
	ID         string
	Action     string
	Severity   string
	FormKey    string
	StorageKey string
	OldValue   string
	NewValue   string
	Rows       int
	IPAddress  string
	UserAgent  string
	Reason     string
	CreatedAt  time.Time
}

// AuditFilter narrows ListAudit.
type AuditFilter struct {
	FormKey string
	Limit   int
	Offset  int
}

// DefaultAuditLimit is used when AuditFilter.Limit is not positive.
const DefaultAuditLimit = 100

func (f AuditFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultAuditLimit
	}
	return f.Limit
}

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options configures Open.
type Options struct {
	Driver string

	// URL is the PostgreSQL connection string.
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Path is the SQLite database file.
	Path string

	// Migrate applies embedded schema migrations after connecting.
	Migrate bool
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverPostgres:
		return OpenPostgres(ctx, opts)
	case DriverSQLite:
		return OpenSQLite(ctx, opts)
	case DriverMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
