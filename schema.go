package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// bootstrapSchema creates the tables we own if they don't exist yet. The
// filing/holding rows are written by the EDGAR ingester; price_cache and
// lastdone are ours alone.
func bootstrapSchema(ctx context.Context, db *sqlx.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS filing (
		   filing_id       BIGINT NOT NULL AUTO_INCREMENT,
		   cik             VARCHAR(20) NOT NULL,
		   quarter         TINYINT NOT NULL,
		   year            SMALLINT NOT NULL,
		   filing_date     DATE NOT NULL,
		   create_datetime DATETIME NOT NULL DEFAULT now(),
		   update_datetime DATETIME NOT NULL DEFAULT now(),
		   PRIMARY KEY (filing_id),
		   UNIQUE KEY filing_period (cik, quarter, year),
		   KEY filing_by_date (cik, filing_date)
		 )`,
		`CREATE TABLE IF NOT EXISTS holding (
		   holding_id       BIGINT NOT NULL AUTO_INCREMENT,
		   filing_id        BIGINT NOT NULL,
		   company_name     VARCHAR(255) NOT NULL,
		   cusip            CHAR(9) NOT NULL DEFAULT '',
		   ticker           VARCHAR(20) NULL,
		   shares           BIGINT NOT NULL DEFAULT 0,
		   value_usd        BIGINT NOT NULL DEFAULT 0,
		   pct_of_portfolio DOUBLE NOT NULL DEFAULT 0,
		   create_datetime  DATETIME NOT NULL DEFAULT now(),
		   update_datetime  DATETIME NOT NULL DEFAULT now(),
		   PRIMARY KEY (holding_id),
		   KEY holding_by_filing (filing_id)
		 )`,
		`CREATE TABLE IF NOT EXISTS price_cache (
		   price_cache_id  BIGINT NOT NULL AUTO_INCREMENT,
		   ticker          VARCHAR(20) NOT NULL,
		   report_date     DATE NOT NULL,
		   eod_price       DOUBLE NULL,
		   expires_at      DATETIME NULL,
		   create_datetime DATETIME NOT NULL DEFAULT now(),
		   update_datetime DATETIME NOT NULL DEFAULT now(),
		   PRIMARY KEY (price_cache_id),
		   UNIQUE KEY price_key (ticker, report_date)
		 )`,
		`CREATE TABLE IF NOT EXISTS lastdone (
		   lastdone_id       BIGINT NOT NULL AUTO_INCREMENT,
		   activity          VARCHAR(64) NOT NULL,
		   unique_key        VARCHAR(64) NOT NULL,
		   last_status       VARCHAR(64) NOT NULL DEFAULT '',
		   lastdone_datetime DATETIME NOT NULL DEFAULT now(),
		   create_datetime   DATETIME NOT NULL DEFAULT now(),
		   update_datetime   DATETIME NOT NULL DEFAULT now(),
		   PRIMARY KEY (lastdone_id),
		   UNIQUE KEY activity_key (activity, unique_key)
		 )`,
	}

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed on CREATE TABLE")
			return err
		}
	}
	return nil
}
