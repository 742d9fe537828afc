package main

import (
	"database/sql"
)

// Holding is one reported position within a filing. Rows are immutable once
// ingested except for Ticker, which is filled in lazily by the resolver
// (a cache-fill mutation, not a business update).
type Holding struct {
	HoldingId      int64          `db:"holding_id"`
	FilingId       int64          `db:"filing_id"`
	CompanyName    string         `db:"company_name"`
	CUSIP          string         `db:"cusip"`
	Ticker         sql.NullString `db:"ticker"`
	Shares         int64          `db:"shares"`
	ValueUsd       int64          `db:"value_usd"`
	PctOfPortfolio float64        `db:"pct_of_portfolio"`
	CreateDatetime string         `db:"create_datetime"`
	UpdateDatetime string         `db:"update_datetime"`
}

// TickerSymbol returns the resolved ticker, normalized, or ok=false when
// resolution hasn't happened or came up empty.
func (h Holding) TickerSymbol() (string, bool) {
	if !h.Ticker.Valid || h.Ticker.String == "" {
		return "", false
	}
	return normalizeTicker(h.Ticker.String), true
}

// AvgPrice is the portfolio cost-basis figure valueUsd/shares, independent
// of any EOD market price. Zero shares means no meaningful average.
func (h Holding) AvgPrice() float64 {
	if h.Shares == 0 {
		return 0
	}
	return float64(h.ValueUsd) / float64(h.Shares)
}

// object methods -------------------------------------------------------------

func (h *Holding) create(deps *Dependencies) error {
	db := deps.db
	sublog := deps.logger

	insert := "INSERT INTO holding SET filing_id=?, company_name=?, cusip=?, ticker=?, shares=?, value_usd=?, pct_of_portfolio=?"
	_, err := db.Exec(insert, h.FilingId, h.CompanyName, h.CUSIP, h.Ticker, h.Shares, h.ValueUsd, h.PctOfPortfolio)
	if err != nil {
		sublog.Error().Err(err).Str("cusip", h.CUSIP).Msg("failed on INSERT")
	}
	return err
}

// saveTicker persists a freshly-resolved ticker so the next request skips
// resolution for this holding.
func (h *Holding) saveTicker(deps *Dependencies, symbol string) error {
	db := deps.db
	sublog := deps.logger

	h.Ticker = sql.NullString{Valid: true, String: normalizeTicker(symbol)}
	if h.HoldingId == 0 {
		// not a persisted row, nothing to update
		return nil
	}

	update := "UPDATE holding SET ticker=?, update_datetime=now() WHERE holding_id=?"
	_, err := db.Exec(update, h.Ticker, h.HoldingId)
	if err != nil {
		sublog.Warn().Err(err).Str("cusip", h.CUSIP).Msg("failed on UPDATE")
	}
	return err
}
