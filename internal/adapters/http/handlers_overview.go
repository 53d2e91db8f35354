package web

import (
	"net/http"
	"time"

	"chemistmap/internal/adapters/http/perf"
	"chemistmap/internal/application/projections"
)

// perfWindow is how far back the overview's request timings reach.
const perfWindow = time.Hour

// handleOverview handles GET /overview
func handleOverview(w http.ResponseWriter, r *http.Request) {
	deps := projections.GetDashboardDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		Now:         timeNow,
	}
	if stores.AuditStore != nil {
		deps.AuditStore = stores.AuditStore
	}
	result, err := projections.QueryGetDashboard(r.Context(), deps)
	if err != nil {
		failWorkflow(w, r, err, "/login")
		return
	}

	var snap *perf.Snapshot
	if perfCollector != nil {
		s := perfCollector.Snapshot(timeNow().Add(-perfWindow), 5)
		snap = &s
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "overview.html", 0, map[string]any{
		"Title":     "Overview",
		"Dashboard": result,
		"MonthName": result.Month.String(),
		"Perf":      snap,
	})
}
