package main

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// test fakes for the external collaborators, so the pipeline runs with no
// MySQL, Redis, or network behind it

func testDeps() *Dependencies {
	logger := zerolog.Nop()
	return &Dependencies{
		logger:       &logger,
		priceCache:   newMemPriceCache(),
		marketData:   newFakeMarketData(),
		cusipMap:     &fakeCusipMapper{tickers: map[string]string{}},
		symbolSearch: &fakeSymbolSearch{},
		resolverConfig: ResolverConfig{
			MatchThreshold: 0.65,
			TickerBoost:    0.15,
		},
		eodConfig: EODConfig{
			MaxAttempts:  3,
			RetryBackoff: 0,
			NullEntryTTL: 7 * 24 * time.Hour,
			LookbackDays: 3,
			WidenedDays:  7,
		},
		reportTopN: 20,
	}
}

// memPriceCache implements priceCacheStore with the same key normalization
// as the MySQL-backed store.
type memPriceCache struct {
	mu      sync.Mutex
	entries map[priceKey]*float64
}

func newMemPriceCache() *memPriceCache {
	return &memPriceCache{entries: make(map[priceKey]*float64)}
}

func (c *memPriceCache) get(ticker, reportDate string) (*float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	price, hit := c.entries[priceKey{normalizeTicker(ticker), reportDate}]
	return price, hit, nil
}

func (c *memPriceCache) upsert(ticker, reportDate string, price *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if price != nil {
		rounded := roundPrice(*price)
		price = &rounded
	}
	c.entries[priceKey{normalizeTicker(ticker), reportDate}] = price
	return nil
}

// fakeMarketData serves closes from a canned per-ticker series, filtered to
// the requested window, and can fail its first N calls.
type fakeMarketData struct {
	mu       sync.Mutex
	closes   map[string][]DailyClose
	failures int
	calls    int
}

func newFakeMarketData() *fakeMarketData {
	return &fakeMarketData{closes: make(map[string][]DailyClose)}
}

func (f *fakeMarketData) getDailyClose(ticker, startDate, endDate string) ([]DailyClose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("market data unavailable")
	}

	windowed := make([]DailyClose, 0, 4)
	for _, dc := range f.closes[ticker] {
		if dc.Date >= startDate && dc.Date <= endDate {
			windowed = append(windowed, dc)
		}
	}
	return windowed, nil
}

func (f *fakeMarketData) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCusipMapper struct {
	mu      sync.Mutex
	tickers map[string]string
	err     error
	calls   int
}

func (f *fakeCusipMapper) mapCusipToTicker(cusip string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.tickers[cusip], nil
}

type fakeSymbolSearch struct {
	mu         sync.Mutex
	candidates []SymbolCandidate
	err        error
	calls      int
}

func (f *fakeSymbolSearch) searchByName(name string) ([]SymbolCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func mkHolding(company, cusip, ticker string, shares, valueUsd int64, pct float64) Holding {
	h := Holding{
		CompanyName:    company,
		CUSIP:          cusip,
		Shares:         shares,
		ValueUsd:       valueUsd,
		PctOfPortfolio: pct,
	}
	if ticker != "" {
		h.Ticker = sql.NullString{Valid: true, String: ticker}
	}
	return h
}

func ptr(f float64) *float64 {
	return &f
}
