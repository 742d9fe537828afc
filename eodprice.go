package main

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/weirdtangent/mytime"
	"github.com/weirdtangent/yhfinance"
)

// DailyClose is one trading day's closing price from the market data source.
type DailyClose struct {
	Date  string // 2006-01-02
	Close float64
}

type marketDataService interface {
	getDailyClose(ticker, startDate, endDate string) ([]DailyClose, error)
}

type EODConfig struct {
	MaxAttempts  int           // transient-failure retries per window
	RetryBackoff time.Duration // fixed pause between retries
	NullEntryTTL time.Duration // how long a cached "no price" suppresses refetching
	LookbackDays int           // first window reaches this many days back
	WidenedDays  int           // second window when the first finds nothing
}

// getEODPrice returns the closing price for a ticker on or before the report
// date, consulting the durable cache first. It never fails: exhausting the
// source yields nil ("no price"), which is also cached so the next report
// doesn't repeat the dead lookup.
func getEODPrice(deps *Dependencies, ticker, reportDate string) *float64 {
	sublog := deps.logger.With().Str("ticker", ticker).Str("report_date", reportDate).Logger()

	ticker = normalizeTicker(ticker)

	price, hit, err := deps.priceCache.get(ticker, reportDate)
	if err == nil && hit {
		priceCacheHits.Inc()
		return price
	}
	priceCacheMisses.Inc()

	anchor := tradingDayAnchor(reportDate)
	price = fetchEODClose(deps, &sublog, ticker, reportDate, anchor, deps.eodConfig.LookbackDays)
	if price == nil {
		// quarter end may sit inside a holiday stretch, widen and try again
		price = fetchEODClose(deps, &sublog, ticker, reportDate, anchor, deps.eodConfig.WidenedDays)
	}

	if price == nil {
		priceFetchFailures.Inc()
		sublog.Warn().Msg("no usable close found, caching the miss")
	}

	// a failed cache write must not throw away a price we already have
	err = deps.priceCache.upsert(ticker, reportDate, price)
	if err != nil {
		sublog.Warn().Err(err).Msg("price cache write failed")
	}

	return price
}

// fetchEODClose queries one lookback window with bounded retries and returns
// the most recent valid close at or before the report date.
func fetchEODClose(deps *Dependencies, sublog *zerolog.Logger, ticker, reportDate, anchor string, lookbackDays int) *float64 {
	anchorDate, err := time.Parse(sqlDateParseType, anchor)
	if err != nil {
		sublog.Error().Err(err).Msg("unparseable anchor date")
		return nil
	}
	startDate := anchorDate.AddDate(0, 0, -lookbackDays).Format(sqlDateParseType)

	var closes []DailyClose
	for attempt := 1; attempt <= deps.eodConfig.MaxAttempts; attempt++ {
		closes, err = deps.marketData.getDailyClose(ticker, startDate, anchor)
		if err == nil {
			break
		}
		sublog.Warn().Err(err).Int("attempt", attempt).Msg("market data fetch failed")
		if attempt < deps.eodConfig.MaxAttempts {
			time.Sleep(deps.eodConfig.RetryBackoff)
		}
	}
	if err != nil {
		return nil
	}

	best := ""
	var bestClose float64
	for _, dc := range closes {
		// never a price after the report date, never a zero/negative "quote"
		if dc.Date > reportDate || dc.Close <= 0 {
			continue
		}
		if dc.Date > best {
			best = dc.Date
			bestClose = dc.Close
		}
	}
	if best == "" {
		return nil
	}
	bestClose = roundPrice(bestClose)
	return &bestClose
}

// tradingDayAnchor pulls a weekend report date back to the prior business
// day so the lookback window is anchored at a day that could have traded.
func tradingDayAnchor(reportDate string) string {
	parsed, err := time.Parse(sqlDateParseType, reportDate)
	if err != nil {
		return reportDate
	}
	if wd := parsed.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return reportDate
	}
	prior, err := mytime.PriorBusinessDayStr(reportDate + " 21:05:00")
	if err != nil || len(prior) < 10 {
		return reportDate
	}
	return prior[0:10]
}

// yhfinance-backed market data ------------------------------------------------

type yhMarketData struct {
	deps *Dependencies
}

func (y *yhMarketData) getDailyClose(ticker, startDate, endDate string) ([]DailyClose, error) {
	secrets := y.deps.secrets
	sublog := y.deps.logger

	apiKey := secrets["yhfinance_rapidapi_key"]
	apiHost := secrets["yhfinance_rapidapi_host"]

	start, err := time.Parse(sqlDateParseType, startDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(sqlDateParseType, endDate)
	if err != nil {
		return nil, err
	}

	historicalParams := map[string]string{
		"symbol":  ticker,
		"period1": strconv.FormatInt(start.Unix(), 10),
		"period2": strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10),
	}
	response, err := yhfinance.GetFromYHFinance(sublog, apiKey, apiHost, "stockHistorical", historicalParams)
	if err != nil {
		return nil, err
	}

	var historicalResponse yhfinance.YHHistoricalDataResponse
	err = json.NewDecoder(strings.NewReader(response)).Decode(&historicalResponse)
	if err != nil {
		return nil, err
	}

	closes := make([]DailyClose, 0, len(historicalResponse.Prices))
	for _, price := range historicalResponse.Prices {
		closes = append(closes, DailyClose{
			Date:  FormatUnixTime(price.Date, sqlDateParseType),
			Close: price.Close,
		})
	}
	return closes, nil
}
