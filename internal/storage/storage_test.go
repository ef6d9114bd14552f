package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func testStores(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), Options{
				Path:    filepath.Join(t.TempDir(), "tableform.db"),
				Migrate: true,
			})
			if err != nil {
				t.Fatalf("OpenSQLite() error = %v", err)
			}
			return s
		},
	}
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, open := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			if _, ok, err := s.Get(ctx, "distri_versions"); err != nil || ok {
				t.Fatalf("Get(missing) = (_, %v, %v), want (_, false, nil)", ok, err)
			}
			if err := s.Set(ctx, "distri_versions", "[]"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, "distri_versions", `[{"number":"8.04"}]`); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}
			got, ok, err := s.Get(ctx, "distri_versions")
			if err != nil || !ok {
				t.Fatalf("Get() = (_, %v, %v)", ok, err)
			}
			if got != `[{"number":"8.04"}]` {
				t.Errorf("Get() = %q, want overwritten value", got)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestStore_Audit(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 4, 25, 12, 0, 0, 0, time.UTC)

	for name, open := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			entries := []AuditRecord{
				{Action: "submit", Severity: "high", FormKey: "distri_versions", StorageKey: "distri_versions",
					OldValue: "[]", NewValue: `[{"number":"8.04"}]`, Rows: 1, IPAddress: "10.0.0.1", CreatedAt: base},
				{Action: "submit_rejected", Severity: "medium", FormKey: "distri_versions", StorageKey: "distri_versions",
					Reason: "validation failed", CreatedAt: base.Add(time.Minute)},
				{Action: "submit", Severity: "high", FormKey: "other", StorageKey: "other",
					NewValue: "[]", CreatedAt: base.Add(2 * time.Minute)},
			}
			for i := range entries {
				rec, err := s.AppendAudit(ctx, entries[i])
				if err != nil {
					t.Fatalf("AppendAudit() error = %v", err)
				}
				if rec.ID == "" {
					t.Fatal("AppendAudit() did not assign an ID")
				}
				entries[i] = rec
			}

			got, err := s.ListAudit(ctx, AuditFilter{FormKey: "distri_versions"})
			if err != nil {
				t.Fatalf("ListAudit() error = %v", err)
			}
			want := []AuditRecord{entries[1], entries[0]}
			if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
				t.Errorf("ListAudit mismatch (-want +got):\n%s", diff)
			}

			all, err := s.ListAudit(ctx, AuditFilter{Limit: 1, Offset: 1})
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 || all[0].ID != entries[1].ID {
				t.Errorf("paged ListAudit = %+v, want the second newest entry", all)
			}

			purged, err := s.PurgeAudit(ctx, base.Add(90*time.Second))
			if err != nil {
				t.Fatalf("PurgeAudit() error = %v", err)
			}
			if purged != 2 {
				t.Errorf("PurgeAudit() = %d, want 2", purged)
			}
			left, _ := s.ListAudit(ctx, AuditFilter{})
			if len(left) != 1 || left[0].FormKey != "other" {
				t.Errorf("after purge: %+v", left)
			}
		})
	}
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tableform.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSQLite(ctx, Options{Path: path, Migrate: true})
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := s.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set() after open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	m.Close()
	if err := m.Set(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(memory) = %T, want *Memory", s)
	}

	if _, err := Open(ctx, Options{Driver: "mysql"}); err == nil {
		t.Error("Open(mysql) error = nil, want error")
	}
	if _, err := Open(ctx, Options{Driver: "postgres"}); err == nil {
		t.Error("Open(postgres) without URL error = nil, want error")
	}
	if _, err := Open(ctx, Options{Driver: "sqlite"}); err == nil {
		t.Error("Open(sqlite) without path error = nil, want error")
	}
}
