package main

import (
	"encoding/json"
	"time"

	"github.com/gomodule/redigo/redis"
)

// Report is the payload handed to the dashboard, the JSON API, and the
// email renderer. Prior filings are nil when the firm has no matching
// disclosure on file.
type Report struct {
	CurrentFiling      Filing          `json:"currentFiling"`
	PriorQuarterFiling *Filing         `json:"priorQuarterFiling"`
	PriorYearFiling    *Filing         `json:"priorYearFiling"`
	ComparisonData     []ComparisonRow `json:"comparisonData"`
	Summary            string          `json:"summary"`
	GeneratedDatetime  string          `json:"generatedDatetime"`
}

const redisReportExpire = 60 * 60 // seconds

// buildFilingReport assembles the full comparison report for a firm's
// latest filing. The report always comes back if the filing exists; any
// number of enrichment failures just leave "n/a" holes in the rows.
func buildFilingReport(deps *Dependencies, cik string) (*Report, error) {
	sublog := deps.logger.With().Str("cik", cik).Logger()

	redisConn := deps.redisPool.Get()
	defer redisConn.Close()

	// serve a recently-built report from redis, or go build it
	redisKey := "report/" + cik
	cached, err := redis.String(redisConn.Do("GET", redisKey))
	if err == nil && !skipRedisChecks {
		var report Report
		err = json.Unmarshal([]byte(cached), &report)
		if err == nil {
			sublog.Info().Str("redis_key", redisKey).Msg("redis cache hit")
			return &report, nil
		}
	}

	current, err := getLatestFiling(deps, cik)
	if err != nil {
		return nil, err
	}
	err = current.loadHoldings(deps)
	if err != nil {
		return nil, err
	}

	priorQ, foundQ, err := findPriorQuarterFiling(deps, cik, current.FilingDate)
	if err != nil {
		sublog.Warn().Err(err).Msg("prior quarter lookup failed, comparing against nothing")
		foundQ = false
	}
	priorY, foundY, err := findSameQuarterPriorYear(deps, cik, current.Quarter, current.Year)
	if err != nil {
		sublog.Warn().Err(err).Msg("prior year lookup failed, comparing against nothing")
		foundY = false
	}

	var priorQuarterFiling, priorYearFiling *Filing
	if foundQ {
		err = priorQ.loadHoldings(deps)
		if err == nil {
			priorQuarterFiling = &priorQ
		}
	}
	if foundY {
		err = priorY.loadHoldings(deps)
		if err == nil {
			priorYearFiling = &priorY
		}
	}

	report := assembleReport(deps, current, priorQuarterFiling, priorYearFiling)

	summary, err := deps.summarizer.summarize(report)
	if err != nil {
		sublog.Info().Err(err).Msg("summary unavailable for this report")
	}
	report.Summary = summary

	encoded, err := json.Marshal(report)
	if err == nil {
		_, err = redisConn.Do("SET", redisKey, string(encoded), "EX", redisReportExpire)
		if err != nil {
			sublog.Error().Err(err).Str("redis_key", redisKey).Msg("failed to save to redis")
		}
	}

	return report, nil
}

func assembleReport(deps *Dependencies, current Filing, priorQ, priorY *Filing) *Report {
	rows := buildComparison(deps, &current, priorQ, priorY)
	reportsBuilt.Inc()

	return &Report{
		CurrentFiling:      current,
		PriorQuarterFiling: priorQ,
		PriorYearFiling:    priorY,
		ComparisonData:     rows,
		GeneratedDatetime:  time.Now().Format(sqlDatetimeParseType),
	}
}

// TopRows truncates to the n largest positions and gives each displayed row
// its share of the displayed subset's value. PctOfShown is deliberately a
// different number than the filing-wide CurrentPct and the templates label
// the two separately.
func (report *Report) TopRows(n int) []ComparisonRow {
	rows := report.ComparisonData
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	var shownValue int64
	for _, row := range rows {
		shownValue += row.CurrentValue
	}

	top := make([]ComparisonRow, len(rows))
	copy(top, rows)
	if shownValue > 0 {
		for n := range top {
			top[n].PctOfShown = float64(top[n].CurrentValue) / float64(shownValue) * 100
		}
	}
	return top
}
