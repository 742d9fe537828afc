package main

import (
	"github.com/rs/zerolog"

	"github.com/weirdtangent/myaws"
)

const (
	httpPort = 3001

	skipRedisChecks = false // always skip the redis cache info

	sqlDateParseType     = "2006-01-02"
	sqlDatetimeParseType = "2006-01-02 15:04:05"

	debugging = false // output DEBUG level logs
)

func main() {
	ctx := setupLogging()

	// connect to AWS
	awssess, err := myaws.AWSConnect("us-east-1", "whalewatch")
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to connect to AWS")
	}

	// connect to MySQL
	db := myaws.DBMustConnect(awssess, "whalewatch")

	_, err = db.Exec("SET NAMES utf8mb4 COLLATE utf8mb4_general_ci")
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to switch RDS to UTF8")
	}

	err = bootstrapSchema(ctx, db)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	secrets := getSecrets(ctx, awssess)
	deps := setupDependencies(ctx, awssess, db, secrets)

	// background loop: email a report for each freshly-ingested filing
	go filingWatcher(deps)

	startHTTPServer(ctx, deps)
}
