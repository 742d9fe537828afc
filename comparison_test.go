package main

import "testing"

func TestBuildComparisonDeltas(t *testing.T) {
	deps := testDeps()
	market := deps.marketData.(*fakeMarketData)
	market.closes["AAPL"] = []DailyClose{
		{Date: "2023-06-30", Close: 193.97},
		{Date: "2023-03-31", Close: 164.90},
		{Date: "2022-06-30", Close: 136.72},
	}

	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 10000, 1900000, 40.0),
	}
	priorQ := &Filing{CIK: "0001067983", Quarter: 1, Year: 2023}
	priorQ.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 8000, 1300000, 35.0),
	}
	priorY := &Filing{CIK: "0001067983", Quarter: 2, Year: 2022}
	priorY.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 8000, 1100000, 30.0),
	}

	rows := buildComparison(deps, current, priorQ, priorY)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]

	if row.CurrentAvgPrice != 190.0 {
		t.Errorf("CurrentAvgPrice = %v, want 190 (1,900,000 / 10,000)", row.CurrentAvgPrice)
	}
	if row.QoQValueChange != 600000 {
		t.Errorf("QoQValueChange = %v, want 600000", row.QoQValueChange)
	}
	if row.QoQPctChange != 5.0 {
		t.Errorf("QoQPctChange = %v, want 5", row.QoQPctChange)
	}
	if row.YoYValueChange != 800000 {
		t.Errorf("YoYValueChange = %v, want 800000", row.YoYValueChange)
	}
	if row.CurrentEODPrice == nil || *row.CurrentEODPrice != 193.97 {
		t.Errorf("CurrentEODPrice = %v, want 193.97", row.CurrentEODPrice)
	}
	if row.QoQEODPriceChange == nil || *row.QoQEODPriceChange != 29.07 {
		t.Errorf("QoQEODPriceChange = %v, want 29.07", row.QoQEODPriceChange)
	}
	if row.YoYEODPriceChange == nil || *row.YoYEODPriceChange != 57.25 {
		t.Errorf("YoYEODPriceChange = %v, want 57.25", row.YoYEODPriceChange)
	}
}

func TestBuildComparisonNewPosition(t *testing.T) {
	deps := testDeps()

	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Acme Corp", "123456789", "", 10000, 1000000, 100.0),
	}
	priorQ := &Filing{CIK: "0001067983", Quarter: 1, Year: 2023}

	rows := buildComparison(deps, current, priorQ, nil)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]

	// no prior holding: the whole value is the change, against zero baselines
	if row.QoQValueChange != 1000000 {
		t.Errorf("QoQValueChange = %v, want 1000000", row.QoQValueChange)
	}
	if row.PriorQAvgPrice != 0 {
		t.Errorf("PriorQAvgPrice = %v, want 0", row.PriorQAvgPrice)
	}
	if row.QoQPctChange != 100.0 {
		t.Errorf("QoQPctChange = %v, want 100", row.QoQPctChange)
	}
}

func TestBuildComparisonUnresolvedTickerNilPrices(t *testing.T) {
	deps := testDeps()
	market := deps.marketData.(*fakeMarketData)

	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Obscure Private Co", "999999999", "", 100, 50000, 100.0),
	}

	rows := buildComparison(deps, current, nil, nil)
	row := rows[0]

	if row.Ticker != "" {
		t.Errorf("Ticker = %q, want empty", row.Ticker)
	}
	if row.CurrentEODPrice != nil || row.QoQEODPriceChange != nil || row.YoYEODPriceChange != nil {
		t.Error("EOD fields should be nil for an unresolved ticker")
	}
	if market.callCount() != 0 {
		t.Errorf("market data called %d times with no resolvable ticker", market.callCount())
	}
}

func TestBuildComparisonMissingEODIsNilNotZero(t *testing.T) {
	deps := testDeps()
	market := deps.marketData.(*fakeMarketData)
	market.closes["AAPL"] = []DailyClose{
		{Date: "2023-06-30", Close: 193.97},
		// nothing near 2023-03-31: prior quarter price unavailable
	}

	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 10000, 1900000, 100.0),
	}
	priorQ := &Filing{CIK: "0001067983", Quarter: 1, Year: 2023}
	priorQ.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 8000, 1300000, 100.0),
	}

	rows := buildComparison(deps, current, priorQ, nil)
	row := rows[0]

	if row.CurrentEODPrice == nil {
		t.Fatal("CurrentEODPrice should be set")
	}
	if row.PriorQEODPrice != nil {
		t.Errorf("PriorQEODPrice = %v, want nil", *row.PriorQEODPrice)
	}
	if row.QoQEODPriceChange != nil {
		t.Errorf("QoQEODPriceChange = %v, want nil when one side is missing", *row.QoQEODPriceChange)
	}
}

func TestBuildComparisonSwapFlipsDeltaSigns(t *testing.T) {
	deps := testDeps()

	a := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	a.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "", 10000, 1900000, 60.0),
		mkHolding("Coca-Cola Co", "191216100", "", 4000, 250000, 40.0),
	}
	b := &Filing{CIK: "0001067983", Quarter: 1, Year: 2023}
	b.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "", 8000, 1300000, 55.0),
		mkHolding("Coca-Cola Co", "191216100", "", 4000, 260000, 45.0),
	}

	forward := buildComparison(deps, a, b, nil)
	backward := buildComparison(deps, b, a, nil)

	byCusip := func(rows []ComparisonRow) map[string]ComparisonRow {
		m := make(map[string]ComparisonRow)
		for _, r := range rows {
			m[r.CUSIP] = r
		}
		return m
	}
	fwd, bwd := byCusip(forward), byCusip(backward)

	for cusip, f := range fwd {
		r := bwd[cusip]
		if f.QoQValueChange != -r.QoQValueChange {
			t.Errorf("%s: QoQValueChange %v vs %v, want negations", cusip, f.QoQValueChange, r.QoQValueChange)
		}
		if f.QoQPctChange != -r.QoQPctChange {
			t.Errorf("%s: QoQPctChange %v vs %v, want negations", cusip, f.QoQPctChange, r.QoQPctChange)
		}
		if f.QoQAvgPriceChange != -r.QoQAvgPriceChange {
			t.Errorf("%s: QoQAvgPriceChange %v vs %v, want negations", cusip, f.QoQAvgPriceChange, r.QoQAvgPriceChange)
		}
	}
}

func TestBuildComparisonSortOrder(t *testing.T) {
	deps := testDeps()

	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Small Co", "111111111", "", 100, 500, 10.0),
		mkHolding("Big Co", "222222222", "", 100, 1500, 50.0),
		mkHolding("Mid Co", "333333333", "", 100, 1000, 40.0),
	}

	rows := buildComparison(deps, current, nil, nil)

	want := []int64{1500, 1000, 500}
	for i, w := range want {
		if rows[i].CurrentValue != w {
			t.Errorf("rows[%d].CurrentValue = %v, want %v", i, rows[i].CurrentValue, w)
		}
	}
}

func TestFetchComparisonPricesDedup(t *testing.T) {
	deps := testDeps()
	market := deps.marketData.(*fakeMarketData)
	market.closes["AAPL"] = []DailyClose{
		{Date: "2023-06-30", Close: 193.97},
		{Date: "2023-03-31", Close: 164.90},
	}

	// two share classes resolving to the same ticker
	current := &Filing{CIK: "0001067983", Quarter: 2, Year: 2023}
	current.Holdings = []Holding{
		mkHolding("Apple Inc", "037833100", "AAPL", 10000, 1900000, 50.0),
		mkHolding("Apple Inc Cl A", "037833201", "AAPL", 5000, 950000, 50.0),
	}
	priorQ := &Filing{CIK: "0001067983", Quarter: 1, Year: 2023}

	buildComparison(deps, current, priorQ, nil)

	// two distinct (ticker, date) pairs, each fetched exactly once
	if market.callCount() != 2 {
		t.Errorf("market data called %d times, want 2", market.callCount())
	}
}

func TestIndexByCusipNilFiling(t *testing.T) {
	index := indexByCusip(nil)
	if index == nil || len(index) != 0 {
		t.Errorf("indexByCusip(nil) = %v, want empty map", index)
	}
}

func TestEODDelta(t *testing.T) {
	if got := eodDelta(ptr(193.97), ptr(164.90)); got == nil || *got != 29.07 {
		t.Errorf("eodDelta = %v, want 29.07", got)
	}
	if got := eodDelta(nil, ptr(164.90)); got != nil {
		t.Errorf("eodDelta(nil, x) = %v, want nil", *got)
	}
	if got := eodDelta(ptr(193.97), nil); got != nil {
		t.Errorf("eodDelta(x, nil) = %v, want nil", *got)
	}
}
