package main

import (
	"sort"
	"sync"
)

// ComparisonRow joins one current holding with its prior-quarter and
// prior-year counterparts (matched by CUSIP) plus EOD market prices for all
// three report dates. EOD-based fields are pointers: nil means "no data",
// which is not the same thing as a zero change.
type ComparisonRow struct {
	Company string `json:"company"`
	CUSIP   string `json:"cusip"`
	Ticker  string `json:"ticker,omitempty"`

	CurrentValue    int64    `json:"currentValue"`
	CurrentShares   int64    `json:"currentShares"`
	CurrentPct      float64  `json:"currentPct"`
	CurrentAvgPrice float64  `json:"currentAvgPrice"`
	CurrentEODPrice *float64 `json:"currentEodPrice"`

	PriorQValue    int64    `json:"priorQValue"`
	PriorQPct      float64  `json:"priorQPct"`
	PriorQAvgPrice float64  `json:"priorQAvgPrice"`
	PriorQEODPrice *float64 `json:"priorQEodPrice"`

	PriorYValue    int64    `json:"priorYValue"`
	PriorYPct      float64  `json:"priorYPct"`
	PriorYAvgPrice float64  `json:"priorYAvgPrice"`
	PriorYEODPrice *float64 `json:"priorYEodPrice"`

	QoQValueChange    int64    `json:"qoqValueChange"`
	QoQPctChange      float64  `json:"qoqPctChange"`
	QoQAvgPriceChange float64  `json:"qoqAvgPriceChange"`
	QoQEODPriceChange *float64 `json:"qoqEodPriceChange"`

	YoYValueChange    int64    `json:"yoyValueChange"`
	YoYPctChange      float64  `json:"yoyPctChange"`
	YoYAvgPriceChange float64  `json:"yoyAvgPriceChange"`
	YoYEODPriceChange *float64 `json:"yoyEodPriceChange"`

	// share of the displayed subset's value, set only after top-N
	// truncation; distinct from the filing-wide CurrentPct
	PctOfShown float64 `json:"pctOfShown,omitempty"`
}

type priceKey struct {
	ticker     string
	reportDate string
}

// buildComparison produces one row per current holding. Prior-period
// holdings with no match in the current filing are deliberately not
// represented: the comparison is current-holdings-driven, and exited
// positions belong to the prior quarter's report. A missing prior filing
// degrades to zero value/percentage baselines, never to an error.
func buildComparison(deps *Dependencies, current *Filing, priorQ, priorY *Filing) []ComparisonRow {
	sublog := deps.logger.With().Str("cik", current.CIK).Str("period", current.QuarterLabel()).Logger()

	// prior-period holdings are matched by CUSIP, so only the current
	// holdings need tickers resolved before price lookups
	resolveTickers(deps, current)

	priorQByCusip := indexByCusip(priorQ)
	priorYByCusip := indexByCusip(priorY)

	prices := fetchComparisonPrices(deps, current, priorQ, priorY)

	rows := make([]ComparisonRow, 0, len(current.Holdings))
	for _, holding := range current.Holdings {
		row := ComparisonRow{
			Company:         holding.CompanyName,
			CUSIP:           holding.CUSIP,
			CurrentValue:    holding.ValueUsd,
			CurrentShares:   holding.Shares,
			CurrentPct:      holding.PctOfPortfolio,
			CurrentAvgPrice: holding.AvgPrice(),
		}

		ticker, hasTicker := holding.TickerSymbol()
		if hasTicker {
			row.Ticker = ticker
			row.CurrentEODPrice = prices[priceKey{ticker, current.ReportDate()}]
		}

		if prior, ok := priorQByCusip[holding.CUSIP]; ok {
			row.PriorQValue = prior.ValueUsd
			row.PriorQPct = prior.PctOfPortfolio
			row.PriorQAvgPrice = prior.AvgPrice()
		}
		if hasTicker && priorQ != nil {
			row.PriorQEODPrice = prices[priceKey{ticker, priorQ.ReportDate()}]
		}

		if prior, ok := priorYByCusip[holding.CUSIP]; ok {
			row.PriorYValue = prior.ValueUsd
			row.PriorYPct = prior.PctOfPortfolio
			row.PriorYAvgPrice = prior.AvgPrice()
		}
		if hasTicker && priorY != nil {
			row.PriorYEODPrice = prices[priceKey{ticker, priorY.ReportDate()}]
		}

		// value/percentage/avg-price deltas always compute, with an absent
		// prior holding acting as a zero baseline
		row.QoQValueChange = row.CurrentValue - row.PriorQValue
		row.QoQPctChange = row.CurrentPct - row.PriorQPct
		row.QoQAvgPriceChange = row.CurrentAvgPrice - row.PriorQAvgPrice
		row.QoQEODPriceChange = eodDelta(row.CurrentEODPrice, row.PriorQEODPrice)

		row.YoYValueChange = row.CurrentValue - row.PriorYValue
		row.YoYPctChange = row.CurrentPct - row.PriorYPct
		row.YoYAvgPriceChange = row.CurrentAvgPrice - row.PriorYAvgPrice
		row.YoYEODPriceChange = eodDelta(row.CurrentEODPrice, row.PriorYEODPrice)

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CurrentValue > rows[j].CurrentValue
	})

	sublog.Info().Int("rows", len(rows)).Msg("comparison built")
	return rows
}

// fetchComparisonPrices collects the distinct (ticker, report date) pairs
// needed across all three periods and fetches each exactly once,
// concurrently. Multiple holdings sharing a ticker, or the same pair
// recurring across periods, cost one lookup.
func fetchComparisonPrices(deps *Dependencies, current *Filing, priorQ, priorY *Filing) map[priceKey]*float64 {
	reportDates := []string{current.ReportDate()}
	if priorQ != nil {
		reportDates = append(reportDates, priorQ.ReportDate())
	}
	if priorY != nil {
		reportDates = append(reportDates, priorY.ReportDate())
	}

	needed := make(map[priceKey]bool)
	for _, holding := range current.Holdings {
		ticker, ok := holding.TickerSymbol()
		if !ok {
			continue
		}
		for _, reportDate := range reportDates {
			needed[priceKey{ticker, reportDate}] = true
		}
	}

	prices := make(map[priceKey]*float64, len(needed))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for key := range needed {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price := getEODPrice(deps, key.ticker, key.reportDate)
			mu.Lock()
			prices[key] = price
			mu.Unlock()
		}()
	}
	wg.Wait()

	return prices
}

func indexByCusip(filing *Filing) map[string]Holding {
	index := make(map[string]Holding)
	if filing == nil {
		return index
	}
	for _, holding := range filing.Holdings {
		// cusip is assumed unique within one filing; first match wins
		if _, exists := index[holding.CUSIP]; exists {
			continue
		}
		index[holding.CUSIP] = holding
	}
	return index
}

// eodDelta is current minus prior, or nil when either side has no data.
func eodDelta(current, prior *float64) *float64 {
	if current == nil || prior == nil {
		return nil
	}
	delta := roundPrice(*current - *prior)
	return &delta
}
