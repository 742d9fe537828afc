package main

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// dashboardHandler shows the tracked firm's latest quarter next to the
// prior quarter and the same quarter last year.
func dashboardHandler(deps *Dependencies) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cik := deps.secrets["firm_cik"]
		if cik == "" {
			http.Error(w, "no firm configured to track", http.StatusNotFound)
			return
		}
		serveFilingReport(w, r, deps, cik)
	})
}

func filingReportHandler(deps *Dependencies) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := mux.Vars(r)
		serveFilingReport(w, r, deps, params["cik"])
	})
}

func serveFilingReport(w http.ResponseWriter, r *http.Request, deps *Dependencies, cik string) {
	sublog := deps.logger.With().Str("cik", cik).Logger()
	webdata := make(map[string]interface{})

	report, err := buildFilingReport(deps, cik)
	if err != nil {
		if errors.Is(err, errFilingNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		sublog.Error().Err(err).Msg("failed to build filing report")
		http.Error(w, "failed to build filing report", http.StatusInternalServerError)
		return
	}

	recents, err := getRecentFilings(deps, cik, 8)
	if err != nil {
		sublog.Warn().Err(err).Msg("failed to load recent filings")
	}

	webdata["report"] = report
	webdata["rows"] = report.TopRows(deps.reportTopN)
	webdata["allRowCount"] = len(report.ComparisonData)
	webdata["summaryHTML"] = renderSummaryHTML(report.Summary)
	webdata["comparisonChart"] = chartHandlerComparisonBar(deps, report, 10)
	webdata["recentFilings"] = recents

	renderTemplate(w, r, deps, sublog, "dashboard", webdata)
}
