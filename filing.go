package main

import (
	"database/sql"
	"errors"
	"fmt"
)

// Filing is one quarterly 13F snapshot, uniquely identified by
// (cik, quarter, year). FilingDate is the date the disclosure was submitted,
// not the quarter-end date the holdings are "as of".
type Filing struct {
	FilingId       int64  `db:"filing_id"`
	CIK            string `db:"cik"`
	Quarter        int    `db:"quarter"`
	Year           int    `db:"year"`
	FilingDate     string `db:"filing_date"`
	CreateDatetime string `db:"create_datetime"`
	UpdateDatetime string `db:"update_datetime"`

	Holdings []Holding `db:"-"`
}

// quarterEndDate is the reporting date for a quarter, used for all EOD price
// lookups. Distinct from the filing date, which lags it by up to 45 days.
func quarterEndDate(quarter, year int) (string, error) {
	switch quarter {
	case 1:
		return fmt.Sprintf("%d-03-31", year), nil
	case 2:
		return fmt.Sprintf("%d-06-30", year), nil
	case 3:
		return fmt.Sprintf("%d-09-30", year), nil
	case 4:
		return fmt.Sprintf("%d-12-31", year), nil
	}
	return "", errBadQuarter
}

func (f Filing) ReportDate() string {
	reportDate, err := quarterEndDate(f.Quarter, f.Year)
	if err != nil {
		return f.FilingDate
	}
	return reportDate
}

func (f Filing) QuarterLabel() string {
	return fmt.Sprintf("Q%d %d", f.Quarter, f.Year)
}

// object methods -------------------------------------------------------------

func (f *Filing) getById(deps *Dependencies) error {
	db := deps.db

	err := db.QueryRowx("SELECT * FROM filing WHERE filing_id=?", f.FilingId).StructScan(f)
	return err
}

func (f *Filing) loadHoldings(deps *Dependencies) error {
	db := deps.db

	holdings := make([]Holding, 0, 100)
	rows, err := db.Queryx("SELECT * FROM holding WHERE filing_id=? ORDER BY value_usd DESC, holding_id", f.FilingId)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var holding Holding
		err = rows.StructScan(&holding)
		if err != nil {
			return err
		}
		holdings = append(holdings, holding)
	}
	f.Holdings = holdings
	return rows.Err()
}

func (f *Filing) createOrUpdate(deps *Dependencies) error {
	db := deps.db
	sublog := deps.logger

	insert_or_update := "INSERT INTO filing SET cik=?, quarter=?, year=?, filing_date=? ON DUPLICATE KEY UPDATE filing_date=?, update_datetime=now()"
	_, err := db.Exec(insert_or_update, f.CIK, f.Quarter, f.Year, f.FilingDate, f.FilingDate)
	if err != nil {
		sublog.Error().Err(err).Str("cik", f.CIK).Msg("failed on INSERT OR UPDATE")
		return err
	}
	return db.QueryRowx("SELECT * FROM filing WHERE cik=? AND quarter=? AND year=?", f.CIK, f.Quarter, f.Year).StructScan(f)
}

// misc -----------------------------------------------------------------------

func getLatestFiling(deps *Dependencies, cik string) (Filing, error) {
	db := deps.db

	var filing Filing
	err := db.QueryRowx("SELECT * FROM filing WHERE cik=? ORDER BY filing_date DESC LIMIT 1", cik).StructScan(&filing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Filing{}, errFilingNotFound
		}
		return Filing{}, err
	}
	return filing, nil
}

// findPriorQuarterFiling returns the most recent filing strictly before the
// given filing date, or ok=false when none exists.
func findPriorQuarterFiling(deps *Dependencies, cik string, beforeDate string) (Filing, bool, error) {
	db := deps.db

	var filing Filing
	err := db.QueryRowx("SELECT * FROM filing WHERE cik=? AND filing_date < ? ORDER BY filing_date DESC LIMIT 1", cik, beforeDate).StructScan(&filing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Filing{}, false, nil
		}
		return Filing{}, false, err
	}
	return filing, true, nil
}

// findSameQuarterPriorYear returns the filing for the same quarter one year
// earlier, or ok=false when none exists.
func findSameQuarterPriorYear(deps *Dependencies, cik string, quarter, year int) (Filing, bool, error) {
	db := deps.db

	var filing Filing
	err := db.QueryRowx("SELECT * FROM filing WHERE cik=? AND quarter=? AND year=? LIMIT 1", cik, quarter, year-1).StructScan(&filing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Filing{}, false, nil
		}
		return Filing{}, false, err
	}
	return filing, true, nil
}

func getRecentFilings(deps *Dependencies, cik string, limit int) ([]Filing, error) {
	db := deps.db

	filings := make([]Filing, 0, limit)
	rows, err := db.Queryx("SELECT * FROM filing WHERE cik=? ORDER BY filing_date DESC LIMIT ?", cik, limit)
	if err != nil {
		return filings, err
	}
	defer rows.Close()

	for rows.Next() {
		var filing Filing
		err = rows.StructScan(&filing)
		if err != nil {
			return filings, err
		}
		filings = append(filings, filing)
	}
	return filings, rows.Err()
}
