package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const watcherInterval = 15 * time.Minute

// LastDone is the bookkeeping row that keeps the watcher from emailing the
// same filing twice.
type LastDone struct {
	LastDoneId       int64  `db:"lastdone_id"`
	Activity         string `db:"activity"`
	UniqueKey        string `db:"unique_key"`
	LastStatus       string `db:"last_status"`
	LastDoneDatetime string `db:"lastdone_datetime"`
	CreateDatetime   string `db:"create_datetime"`
	UpdateDatetime   string `db:"update_datetime"`
}

const reportEmailActivity = "report_email"

// filingWatcher polls for a freshly-ingested filing for the tracked firm
// and emails the comparison report once per new filing. Runs for the life
// of the process.
func filingWatcher(deps *Dependencies) {
	sublog := deps.logger

	cik := deps.secrets["firm_cik"]
	if cik == "" {
		sublog.Info().Msg("no firm_cik configured, filing watcher idle")
		return
	}

	for {
		checkForNewFiling(deps, cik)
		time.Sleep(watcherInterval)
	}
}

func checkForNewFiling(deps *Dependencies, cik string) {
	sublog := deps.logger.With().Str("cik", cik).Logger()

	filing, err := getLatestFiling(deps, cik)
	if err != nil {
		if !errors.Is(err, errFilingNotFound) {
			sublog.Error().Err(err).Msg("failed to check for latest filing")
		}
		return
	}

	uniqueKey := fmt.Sprintf("%s-%s", cik, filing.QuarterLabel())
	done, err := alreadyDone(deps, reportEmailActivity, uniqueKey)
	if err != nil {
		sublog.Error().Err(err).Msg("failed to check lastdone")
		return
	}
	if done {
		return
	}

	sublog.Info().Str("period", filing.QuarterLabel()).Msg("new filing found, building report")

	report, err := buildFilingReport(deps, cik)
	if err != nil {
		sublog.Error().Err(err).Msg("failed to build report for new filing")
		markDone(deps, reportEmailActivity, uniqueKey, "build-failed")
		return
	}

	err = sendReportEmail(deps, report)
	if err != nil {
		sublog.Error().Err(err).Msg("failed to email report")
		// not marked done so the next pass retries the send
		return
	}

	markDone(deps, reportEmailActivity, uniqueKey, "sent")
}

// misc -----------------------------------------------------------------------

func alreadyDone(deps *Dependencies, activity, uniqueKey string) (bool, error) {
	db := deps.db

	var lastdone LastDone
	err := db.QueryRowx("SELECT * FROM lastdone WHERE activity=? AND unique_key=?", activity, uniqueKey).StructScan(&lastdone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return lastdone.LastStatus == "sent", nil
}

func markDone(deps *Dependencies, activity, uniqueKey, status string) {
	db := deps.db
	sublog := deps.logger

	insert_or_update := "INSERT INTO lastdone SET activity=?, unique_key=?, last_status=?, lastdone_datetime=now() ON DUPLICATE KEY UPDATE last_status=?, lastdone_datetime=now(), update_datetime=now()"
	_, err := db.Exec(insert_or_update, activity, uniqueKey, status, status)
	if err != nil {
		sublog.Error().Err(err).Str("activity", activity).Str("unique_key", uniqueKey).Msg("failed on INSERT OR UPDATE")
	}
}
