package main

import "errors"

var (
	errFilingNotFound   = errors.New("no filing found for that cik")
	errNoSearchResults  = errors.New("sorry, the search returned zero results")
	errSummarySkipped   = errors.New("summary generation disabled, no api key")
	errBadQuarter       = errors.New("quarter must be 1 through 4")
	errEmailNotComplete = errors.New("report email needs from and to addresses")
)
