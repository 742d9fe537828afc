package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type jsonResponseData struct {
	ApiVersion string                 `json:"api_version"`
	Endpoint   string                 `json:"endpoint"`
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data"`
}

func apiV1Handler(deps *Dependencies) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sublog := deps.logger

		w.Header().Add("Content-Type", "application/json")

		params := mux.Vars(r)
		endpoint := params["endpoint"]

		jsonResponse := jsonResponseData{ApiVersion: "0.1.0", Endpoint: endpoint, Success: false, Data: make(map[string]interface{})}

		switch endpoint {
		case "version":
			jsonResponse.Success = true
			jsonResponse.Message = "ok"

		case "report":
			apiReport(deps, r, &jsonResponse)

		default:
			sublog.Error().Str("api_version", jsonResponse.ApiVersion).Str("endpoint", endpoint).Err(fmt.Errorf("failure: call to unknown api endpoint")).Msg("api call failed")
			jsonResponse.Success = false
			jsonResponse.Message = "Failure: unknown endpoint"
		}

		json.NewEncoder(w).Encode(jsonResponse)
	})
}

func apiReport(deps *Dependencies, r *http.Request, jsonResponse *jsonResponseData) {
	sublog := deps.logger

	cik := r.FormValue("cik")
	if cik == "" {
		cik = deps.secrets["firm_cik"]
	}
	if cik == "" {
		jsonResponse.Message = "Failure: cik is required"
		return
	}

	report, err := buildFilingReport(deps, cik)
	if err != nil {
		sublog.Error().Err(err).Str("cik", cik).Msg("api report failed")
		jsonResponse.Message = "Failure: " + err.Error()
		return
	}

	jsonResponse.Success = true
	jsonResponse.Message = "ok"
	jsonResponse.Data["currentFiling"] = report.CurrentFiling
	jsonResponse.Data["priorQuarterFiling"] = report.PriorQuarterFiling
	jsonResponse.Data["priorYearFiling"] = report.PriorYearFiling
	jsonResponse.Data["comparisonData"] = report.ComparisonData
	jsonResponse.Data["summary"] = report.Summary
}
