package main

import (
	"context"
	"html/template"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gomodule/redigo/redis"
	"github.com/jmoiron/sqlx"
	"github.com/oxtoacart/bpool"
	"github.com/rs/zerolog"
)

// Dependencies carries every shared resource a handler or pipeline step
// needs. One instance is built at boot and passed down; nothing reads
// globals.
type Dependencies struct {
	awssess   *session.Session
	db        *sqlx.DB
	redisPool *redis.Pool
	secrets   map[string]string
	logger    *zerolog.Logger
	templates *template.Template
	bufpool   *bpool.BufferPool

	cusipMap     cusipMapper
	symbolSearch symbolSearchService
	marketData   marketDataService
	priceCache   priceCacheStore
	summarizer   summaryService

	resolverConfig ResolverConfig
	eodConfig      EODConfig
	reportTopN     int
}

func setupDependencies(ctx context.Context, awssess *session.Session, db *sqlx.DB, secrets map[string]string) *Dependencies {
	logger := zerolog.Ctx(ctx)

	redisPool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", secretOrDefault(secrets, "redis_address", "127.0.0.1:6379"))
		},
	}

	templates, err := template.New("").Funcs(templateFuncs()).ParseGlob("templates/*.gohtml")
	if err != nil {
		logger.Warn().Err(err).Msg("failed to parse templates, pages will 404")
		templates = template.New("")
	}

	deps := &Dependencies{
		awssess:   awssess,
		db:        db,
		redisPool: redisPool,
		secrets:   secrets,
		logger:    logger,
		templates: templates,
		bufpool:   bpool.NewBufferPool(64),

		resolverConfig: ResolverConfig{
			MatchThreshold: secretFloat(secrets, "match_threshold", 0.65),
			TickerBoost:    secretFloat(secrets, "ticker_boost", 0.15),
		},
		eodConfig: EODConfig{
			MaxAttempts:  3,
			RetryBackoff: 2 * time.Second,
			NullEntryTTL: time.Duration(secretInt(secrets, "null_cache_ttl_days", 7)) * 24 * time.Hour,
			LookbackDays: 3,
			WidenedDays:  7,
		},
		reportTopN: secretInt(secrets, "report_top_n", 20),
	}

	deps.cusipMap = newOpenFIGIClient(secrets["openfigi_api_key"])
	deps.symbolSearch = &yhSymbolSearch{deps: deps}
	deps.marketData = &yhMarketData{deps: deps}
	deps.priceCache = &dbPriceCache{deps: deps}
	deps.summarizer = &geminiSummarizer{deps: deps}

	return deps
}

func secretOrDefault(secrets map[string]string, key, dflt string) string {
	if secrets[key] == "" {
		return dflt
	}
	return secrets[key]
}

func secretFloat(secrets map[string]string, key string, dflt float64) float64 {
	val, err := strconv.ParseFloat(secrets[key], 64)
	if err != nil {
		return dflt
	}
	return val
}

func secretInt(secrets map[string]string, key string, dflt int) int {
	val, err := strconv.Atoi(secrets[key])
	if err != nil {
		return dflt
	}
	return val
}
