package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weirdtangent/myaws"
)

func setupLogging() context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	// alter the caller() return to only include the last directory
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		parts := strings.Split(file, "/")
		if len(parts) > 1 {
			return strings.Join(parts[len(parts)-2:], "/") + ":" + strconv.Itoa(line)
		}
		return file + ":" + strconv.Itoa(line)
	}
	pgmPath := strings.Split(os.Args[0], `/`)
	logTag := "whalewatch"
	if len(pgmPath) > 1 {
		logTag = pgmPath[len(pgmPath)-1]
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debugging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := log.With().Str("@tag", logTag).Caller().Logger()
	ctx := log.WithContext(context.Background())

	return ctx
}

func getSecrets(ctx context.Context, awssess *session.Session) map[string]string {
	var secrets = make(map[string]string)

	// yhfinance api access key and host
	yf_api_access_key, err := myaws.AWSGetSecretKV(awssess, "whalewatch", "yhfinance_rapidapi_key")
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to get YHFinance API key")
	}
	secrets["yhfinance_rapidapi_key"] = *yf_api_access_key

	yf_api_access_host, err := myaws.AWSGetSecretKV(awssess, "whalewatch", "yhfinance_rapidapi_host")
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to get YHFinance API host")
	}
	secrets["yhfinance_rapidapi_host"] = *yf_api_access_host

	// the rest are optional; missing just disables or defaults a feature
	for _, key := range []string{
		"openfigi_api_key",
		"gemini_api_key",
		"redis_address",
		"report_from_email",
		"report_to_email",
		"firm_cik",
		"match_threshold",
		"ticker_boost",
		"null_cache_ttl_days",
		"report_top_n",
	} {
		value, err := myaws.AWSGetSecretKV(awssess, "whalewatch", key)
		if err != nil || value == nil {
			zerolog.Ctx(ctx).Info().Str("secret", key).Msg("optional secret not set")
			continue
		}
		secrets[key] = *value
	}

	return secrets
}

func startHTTPServer(ctx context.Context, deps *Dependencies) {
	router := mux.NewRouter()

	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static/"))))
	router.PathPrefix("/favicon.ico").Handler(http.FileServer(http.Dir("static/images")))

	router.HandleFunc("/ping", pingHandler(deps)).Methods("GET")
	router.HandleFunc("/api/v1/{endpoint}", apiV1Handler(deps)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	router.HandleFunc("/filing/{cik}", filingReportHandler(deps)).Methods("GET")
	router.HandleFunc("/", dashboardHandler(deps)).Methods("GET")

	// middleware chain
	chainedMux1 := withAddHeader(router)
	chainedMux2 := withLogging(chainedMux1) // outer level, first to run

	zerolog.Ctx(ctx).Info().Int("port", httpPort).Msg("started serving requests")

	server := &http.Server{
		Handler:      chainedMux2,
		Addr:         ":" + strconv.Itoa(httpPort),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("ended abnormally")
	} else {
		zerolog.Ctx(ctx).Info().Msg("stopped serving requests")
	}
}

func pingHandler(deps *Dependencies) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(`{"alive":true}`))
	})
}
