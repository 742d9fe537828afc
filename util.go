package main

import (
	"html/template"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// normalizeTicker maps textual ticker variants onto one cache/db key:
// uppercase, class shares use dashes, internal whitespace collapses to
// the dash form ("BRK.B" and "brk b" both become "BRK-B"). Idempotent.
func normalizeTicker(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	symbol = strings.ReplaceAll(symbol, ".", "-")
	symbol = strings.Join(strings.Fields(symbol), "-")
	return symbol
}

func FormatUnixTime(unixTime int64, formatStr string) string {
	if unixTime == 0 {
		return ""
	}
	if formatStr == "" {
		formatStr = "Jan 2 15:04 MST 2006"
	}

	EasternTZ, _ := time.LoadLocation("America/New_York")
	realDate := time.Unix(unixTime, 0).In(EasternTZ)
	return realDate.Format(formatStr)
}

// roundPrice keeps prices at the 2-decimal precision we store and compare.
func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

func PriceDiffAmt(a, b float64) float64 {
	return b - a
}

func PriceDiffPercAmt(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / a * 100
}

func PriceMoveColorCSS(amt float64) string {
	if amt > 0 {
		return "text-success"
	}
	if amt < 0 {
		return "text-danger"
	}
	return ""
}

func FormatDollars(valueUsd int64) string {
	return moneyPrinter.Sprintf("$%d", valueUsd)
}

func FormatShares(shares int64) string {
	return moneyPrinter.Sprintf("%d", shares)
}

func FormatPrice(price float64) string {
	return moneyPrinter.Sprintf("$%.2f", price)
}

// FormatOptPrice renders a nullable EOD price or delta. A nil pointer is
// "no data", which must never display as $0.00.
func FormatOptPrice(price *float64) string {
	if price == nil {
		return "n/a"
	}
	return moneyPrinter.Sprintf("$%.2f", *price)
}

func FormatPct(pct float64) string {
	return moneyPrinter.Sprintf("%.2f%%", pct)
}

func FormatDate(dateStr string) string {
	parsed, err := time.Parse(sqlDateParseType, dateStr)
	if err != nil {
		return dateStr
	}
	return parsed.Format("Jan 2, 2006")
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"dollars":       FormatDollars,
		"shares":        FormatShares,
		"price":         FormatPrice,
		"optPrice":      FormatOptPrice,
		"pct":           FormatPct,
		"prettyDate":    FormatDate,
		"moveColor":     PriceMoveColorCSS,
		"valueMoveColor": func(amt int64) string {
			return PriceMoveColorCSS(float64(amt))
		},
		"optMoveColor": func(amt *float64) string {
			if amt == nil {
				return ""
			}
			return PriceMoveColorCSS(*amt)
		},
	}
}
