package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/weirdtangent/yhfinance"
)

// ResolverConfig holds the fuzzy-match tuning knobs. The defaults came out
// of eyeballing 13F issuer names against Yahoo search results; they are
// secrets-configurable so they can be re-tuned without a deploy.
type ResolverConfig struct {
	MatchThreshold float64 // accept the best candidate only at or above this score
	TickerBoost    float64 // added when the issuer name contains the candidate's ticker
}

type cusipMapper interface {
	mapCusipToTicker(cusip string) (string, error)
}

type SymbolCandidate struct {
	Ticker string
	Name   string
}

type symbolSearchService interface {
	searchByName(name string) ([]SymbolCandidate, error)
}

// resolveTickers fills in missing tickers on a filing's holdings. All
// lookups run concurrently; the batch takes as long as the slowest single
// call. Resolution never fails the caller: a holding that can't be resolved
// just goes without price enrichment.
func resolveTickers(deps *Dependencies, filing *Filing) {
	var wg sync.WaitGroup
	for n := range filing.Holdings {
		holding := &filing.Holdings[n]
		if _, ok := holding.TickerSymbol(); ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolveHolding(deps, holding)
		}()
	}
	wg.Wait()
}

// resolveHolding tries CUSIP mapping first, then a fuzzy name search. A
// resolved symbol is written back to the holding row so future requests
// skip this entirely.
func resolveHolding(deps *Dependencies, holding *Holding) {
	sublog := deps.logger.With().Str("cusip", holding.CUSIP).Str("company", holding.CompanyName).Logger()

	if holding.CUSIP != "" {
		symbol, err := deps.cusipMap.mapCusipToTicker(holding.CUSIP)
		if err != nil {
			tickerResolutions.WithLabelValues("cusip", "error").Inc()
			sublog.Warn().Err(err).Msg("cusip mapping failed")
		} else if symbol != "" {
			tickerResolutions.WithLabelValues("cusip", "resolved").Inc()
			holding.saveTicker(deps, symbol)
			return
		}
	}

	if holding.CompanyName == "" {
		tickerResolutions.WithLabelValues("none", "unresolved").Inc()
		return
	}

	candidates, err := deps.symbolSearch.searchByName(holding.CompanyName)
	if err != nil {
		tickerResolutions.WithLabelValues("name", "error").Inc()
		sublog.Warn().Err(err).Msg("symbol search failed")
		return
	}

	symbol, score := bestSymbolMatch(holding.CompanyName, candidates, deps.resolverConfig)
	if symbol == "" {
		tickerResolutions.WithLabelValues("name", "unresolved").Inc()
		sublog.Info().Float64("best_score", score).Msg("no candidate above threshold")
		return
	}
	tickerResolutions.WithLabelValues("name", "resolved").Inc()
	sublog.Info().Str("symbol", symbol).Float64("score", score).Msg("fuzzy-matched company to symbol")
	holding.saveTicker(deps, symbol)
}

// bestSymbolMatch scores every candidate by token-set similarity against the
// issuer name, boosts candidates whose ticker appears inside the issuer
// name, and returns the winner only when it clears the threshold.
func bestSymbolMatch(companyName string, candidates []SymbolCandidate, config ResolverConfig) (string, float64) {
	bestSymbol := ""
	bestScore := 0.0

	queryLower := strings.ToLower(companyName)
	for _, candidate := range candidates {
		if candidate.Ticker == "" {
			continue
		}
		score := tokenSetScore(companyName, candidate.Name)
		if strings.Contains(queryLower, strings.ToLower(candidate.Ticker)) {
			score += config.TickerBoost
			if score > 1.0 {
				score = 1.0
			}
		}
		if score > bestScore {
			bestScore = score
			bestSymbol = candidate.Ticker
		}
	}

	if bestScore < config.MatchThreshold {
		return "", bestScore
	}
	return bestSymbol, bestScore
}

// tokenSetScore is intersection-over-union of the two names' word tokens,
// lowercased with punctuation stripped.
func tokenSetScore(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(name string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(name))

	set := make(map[string]bool)
	for _, token := range strings.Fields(cleaned) {
		set[token] = true
	}
	return set
}

// OpenFIGI mapping ------------------------------------------------------------

const openFIGIMappingURL = "https://api.openfigi.com/v3/mapping"

type openFIGIClient struct {
	apiKey     string
	mappingURL string
	httpClient *http.Client
}

func newOpenFIGIClient(apiKey string) *openFIGIClient {
	return &openFIGIClient{
		apiKey:     apiKey,
		mappingURL: openFIGIMappingURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type openFIGIJob struct {
	IdType  string `json:"idType"`
	IdValue string `json:"idValue"`
}

type openFIGIResult struct {
	Data []struct {
		FIGI   string `json:"figi"`
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	} `json:"data"`
	Error string `json:"error"`
}

func (c *openFIGIClient) mapCusipToTicker(cusip string) (string, error) {
	body, err := json.Marshal([]openFIGIJob{{IdType: "ID_CUSIP", IdValue: cusip}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", c.mappingURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-OPENFIGI-APIKEY", c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openfigi returned status %d", res.StatusCode)
	}

	var results []openFIGIResult
	err = json.NewDecoder(res.Body).Decode(&results)
	if err != nil {
		return "", err
	}

	// first mapped ticker wins; an empty mapping is "no ticker", not an error
	for _, result := range results {
		for _, data := range result.Data {
			if data.Ticker != "" {
				return data.Ticker, nil
			}
		}
	}
	return "", nil
}

// yhfinance symbol search -----------------------------------------------------

type yhSymbolSearch struct {
	deps *Dependencies
}

func (y *yhSymbolSearch) searchByName(name string) ([]SymbolCandidate, error) {
	secrets := y.deps.secrets
	sublog := y.deps.logger

	apiKey := secrets["yhfinance_rapidapi_key"]
	apiHost := secrets["yhfinance_rapidapi_host"]

	searchParams := map[string]string{"q": name, "region": "US"}
	response, err := yhfinance.GetFromYHFinance(sublog, apiKey, apiHost, "autocomplete", searchParams)
	if err != nil {
		return nil, err
	}

	var searchResponse yhfinance.YHAutoCompleteResponse
	err = json.NewDecoder(strings.NewReader(response)).Decode(&searchResponse)
	if err != nil {
		return nil, err
	}
	if len(searchResponse.Quotes) == 0 {
		return nil, errNoSearchResults
	}

	candidates := make([]SymbolCandidate, 0, len(searchResponse.Quotes))
	for _, quoteResult := range searchResponse.Quotes {
		if quoteResult.Type == "Option" {
			continue
		}
		candidateName := quoteResult.LongName
		if candidateName == "" {
			candidateName = quoteResult.ShortName
		}
		candidates = append(candidates, SymbolCandidate{
			Ticker: quoteResult.Symbol,
			Name:   candidateName,
		})
	}
	return candidates, nil
}
