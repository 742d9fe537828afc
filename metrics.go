package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	priceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_price_cache_hits_total",
		Help: "Price lookups answered from the cache, including cached misses.",
	})
	priceCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_price_cache_misses_total",
		Help: "Price lookups that had to go to the market data source.",
	})
	priceFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_price_fetch_failures_total",
		Help: "Price fetches that exhausted retries without a usable close.",
	})
	tickerResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whalewatch_ticker_resolutions_total",
		Help: "Ticker resolution attempts by outcome.",
	}, []string{"method", "outcome"})
	reportsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_reports_built_total",
		Help: "Comparison reports assembled.",
	})
)
