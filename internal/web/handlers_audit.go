package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/tableform/internal/core"
)

const maxAuditPageSize = 500

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// handleAuditLog returns submit audit entries, newest first, as JSON or CSV
// (format=csv).
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	if limit == 0 || limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	filter := core.AuditLogFilter{
		FormKey: r.URL.Query().Get("form"),
		Limit:   limit,
		Offset:  parseIntParam(r, "offset", 0),
	}

	entries, err := s.service.GetAuditLog(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeAuditCSV(w, entries)
		return
	}
	writeJSON(w, entries)
}

// writeAuditCSV streams audit entries as a CSV attachment.
func writeAuditCSV(w http.ResponseWriter, entries []core.AuditEntry) {
	filename := fmt.Sprintf("audit_log_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "created_at", "action", "severity", "form", "storage_key", "rows", "ip_address", "user_agent", "reason"})
	for _, e := range entries {
		cw.Write([]string{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			string(e.Action),
			string(e.Severity),
			e.FormKey,
			e.StorageKey,
			strconv.Itoa(e.Rows),
			e.IPAddress,
			e.UserAgent,
			e.Reason,
		})
	}
	cw.Flush()
}
