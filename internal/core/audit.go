package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/tableform/internal/storage"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionSubmit         AuditAction = "submit"
	ActionSubmitRejected AuditAction = "submit_rejected"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string        `json:"id"`
	Action     AuditAction   `json:"action"`
	Severity   AuditSeverity `json:"severity"`
	FormKey    string        `json:"formKey"`
	StorageKey string        `json:"storageKey"`
	OldValue   string        `json:"oldValue,omitempty"`
	NewValue   string        `json:"newValue,omitempty"`
	Rows       int           `json:"rows,omitempty"`
	IPAddress  string        `json:"ipAddress,omitempty"`
	UserAgent  string        `json:"userAgent,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// Client details are taken from the context.
type AuditLogParams struct {
	Action     AuditAction
	FormKey    string
	StorageKey string
	OldValue   string
	NewValue   string
	Rows       int
	Reason     string
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionSubmit:
		return SeverityHigh
	case ActionSubmitRejected:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// LogAudit creates a new audit log entry.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	meta := RequestMetaFromContext(ctx)

	rec, err := s.store.AppendAudit(ctx, storage.AuditRecord{
		Action:     string(params.Action),
		Severity:   string(determineSeverity(params.Action)),
		FormKey:    params.FormKey,
		StorageKey: params.StorageKey,
		OldValue:   params.OldValue,
		NewValue:   params.NewValue,
		Rows:       params.Rows,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Reason:     params.Reason,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return recordToEntry(rec), nil
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	FormKey string
	Limit   int
	Offset  int
}

// GetAuditLog retrieves audit log entries, newest first.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	recs, err := s.store.ListAudit(ctx, storage.AuditFilter{
		FormKey: filter.FormKey,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, *recordToEntry(rec))
	}
	return entries, nil
}

func recordToEntry(rec storage.AuditRecord) *AuditEntry {
	return &AuditEntry{
		ID:         rec.ID,
		Action:     AuditAction(rec.Action),
		Severity:   AuditSeverity(rec.Severity),
		FormKey:    rec.FormKey,
		StorageKey: rec.StorageKey,
		OldValue:   rec.OldValue,
		NewValue:   rec.NewValue,
		Rows:       rec.Rows,
		IPAddress:  rec.IPAddress,
		UserAgent:  rec.UserAgent,
		Reason:     rec.Reason,
		CreatedAt:  rec.CreatedAt,
	}
}
