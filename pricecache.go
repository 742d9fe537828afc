package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// priceCacheStore is the durable memo of (ticker, report date) price lookups.
// hit=true with a nil price means a prior lookup explicitly found no price;
// hit=false means the key is cold and the caller should go to the market
// data source.
type priceCacheStore interface {
	get(ticker, reportDate string) (price *float64, hit bool, err error)
	upsert(ticker, reportDate string, price *float64) error
}

type PriceCacheEntry struct {
	PriceCacheId   int64           `db:"price_cache_id"`
	Ticker         string          `db:"ticker"`
	ReportDate     string          `db:"report_date"`
	EODPrice       sql.NullFloat64 `db:"eod_price"`
	ExpiresAt      sql.NullTime    `db:"expires_at"`
	CreateDatetime string          `db:"create_datetime"`
	UpdateDatetime string          `db:"update_datetime"`
}

// dbPriceCache is the MySQL-backed cache with a short-lived Redis layer in
// front. MySQL is the system of record; Redis is only a per-key response
// memo and every Redis failure degrades to the MySQL path.
type dbPriceCache struct {
	deps *Dependencies
}

const redisPriceExpire = 60 * 60 // seconds

func redisPriceKey(ticker, reportDate string) string {
	return "eodprice/" + ticker + "/" + reportDate
}

func (c *dbPriceCache) get(ticker, reportDate string) (*float64, bool, error) {
	db := c.deps.db
	redisPool := c.deps.redisPool
	sublog := c.deps.logger

	ticker = normalizeTicker(ticker)

	redisConn := redisPool.Get()
	defer redisConn.Close()

	redisKey := redisPriceKey(ticker, reportDate)
	cached, err := redis.String(redisConn.Do("GET", redisKey))
	if err == nil && !skipRedisChecks {
		if cached == "none" {
			return nil, true, nil
		}
		var price float64
		_, err = fmt.Sscanf(cached, "%f", &price)
		if err == nil {
			return &price, true, nil
		}
	}

	var entry PriceCacheEntry
	err = db.QueryRowx("SELECT * FROM price_cache WHERE ticker=? AND report_date=?", ticker, reportDate).StructScan(&entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		sublog.Warn().Err(err).Str("ticker", ticker).Msg("price cache read failed, treating as miss")
		return nil, false, err
	}

	if !entry.EODPrice.Valid {
		if negativeEntryExpired(entry, time.Now()) {
			return nil, false, nil
		}
		c.memoize(redisConn, redisKey, nil)
		return nil, true, nil
	}

	price := entry.EODPrice.Float64
	c.memoize(redisConn, redisKey, &price)
	return &price, true, nil
}

func (c *dbPriceCache) upsert(ticker, reportDate string, price *float64) error {
	db := c.deps.db
	redisPool := c.deps.redisPool
	sublog := c.deps.logger

	ticker = normalizeTicker(ticker)

	var eodPrice sql.NullFloat64
	var expiresAt sql.NullTime
	if price != nil {
		eodPrice = sql.NullFloat64{Valid: true, Float64: roundPrice(*price)}
	} else {
		expiresAt = sql.NullTime{Valid: true, Time: time.Now().Add(c.deps.eodConfig.NullEntryTTL)}
	}

	insert_or_update := "INSERT INTO price_cache SET ticker=?, report_date=?, eod_price=?, expires_at=? ON DUPLICATE KEY UPDATE eod_price=?, expires_at=?, update_datetime=now()"
	_, err := db.Exec(insert_or_update, ticker, reportDate, eodPrice, expiresAt, eodPrice, expiresAt)
	if err != nil {
		sublog.Error().Err(err).Str("ticker", ticker).Str("report_date", reportDate).Msg("failed on INSERT OR UPDATE")
		return err
	}

	redisConn := redisPool.Get()
	defer redisConn.Close()
	c.memoize(redisConn, redisPriceKey(ticker, reportDate), price)

	return nil
}

// negativeEntryExpired reports whether a cached "no price" row has aged out
// and should count as a cold miss, so a transient source outage can't
// suppress a real price forever.
func negativeEntryExpired(entry PriceCacheEntry, now time.Time) bool {
	return !entry.EODPrice.Valid && entry.ExpiresAt.Valid && now.After(entry.ExpiresAt.Time)
}

func (c *dbPriceCache) memoize(redisConn redis.Conn, redisKey string, price *float64) {
	sublog := c.deps.logger

	value := "none"
	if price != nil {
		value = fmt.Sprintf("%.2f", *price)
	}
	_, err := redisConn.Do("SET", redisKey, value, "EX", redisPriceExpire)
	if err != nil {
		sublog.Error().Err(err).Str("redis_key", redisKey).Msg("failed to save to redis")
	}
}
