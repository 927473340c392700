package datasets

import (
	"context"
	"fmt"
	"strconv"

	"tilasto"
	"tilasto/pxweb"
)

// TradeConfig selects the balance of payments table. The table is
// monthly; months are summed into calendar years.
type TradeConfig struct {
	Table string
	// CA current account, GS goods and services, G goods, S services.
	Items []string
	// C income (exports), D expenditure (imports), B net.
	Info []string
}

func DefaultTradeConfig() TradeConfig {
	return TradeConfig{
		Table: "StatFin/mata/statfin_mata_pxt_12gf.px",
		Items: []string{"CA", "GS", "G", "S"},
		Info:  []string{"C", "D", "B"},
	}
}

// TradeYear is one calendar year of trade flows, million EUR.
type TradeYear struct {
	Year             int      `json:"year"`
	ExportsTotal     float64  `json:"exports_total"`
	ImportsTotal     float64  `json:"imports_total"`
	TradeBalance     float64  `json:"trade_balance"`
	GoodsBalance     float64  `json:"goods_balance"`
	ServicesBalance  float64  `json:"services_balance"`
	GoodsExports     float64  `json:"goods_exports"`
	GoodsImports     float64  `json:"goods_imports"`
	ServicesExports  float64  `json:"services_exports"`
	ServicesImports  float64  `json:"services_imports"`
	CurrentAccount   float64  `json:"current_account"`
	ExportCoverage   *float64 `json:"export_coverage_pct,omitempty"`
	ServicesSharePct *float64 `json:"services_share_pct,omitempty"`
}

// TradeSummary holds the long-run trajectory of the trade balance.
type TradeSummary struct {
	Period                string  `json:"period"`
	CurrentBalanceBillion float64 `json:"current_balance_billion"`
	PeakYear              int     `json:"peak_year"`
	PeakBalanceBillion    float64 `json:"peak_balance_billion"`
	SurplusYears          int     `json:"surplus_years"`
	DeficitYears          int     `json:"deficit_years"`
	ServicesShareChange   float64 `json:"services_share_change"`
	KeyInsight            string  `json:"key_insight"`
}

// TradeBalanceData is the output of the trade balance job.
type TradeBalanceData struct {
	Metadata   tilasto.Metadata `json:"metadata"`
	Summary    *TradeSummary    `json:"summary"`
	TimeSeries []TradeYear      `json:"time_series"`
}

// RunTradeBalance fetches the monthly balance of payments and writes
// the yearly trade series.
func RunTradeBalance(ctx context.Context, env Env) error {
	cfg := DefaultTradeConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch trade table metadata: %w", err)
	}
	months, ok := meta.Variable("Kuukausi")
	if !ok {
		return fmt.Errorf("trade table has no month variable")
	}

	q := pxweb.NewQuery().
		Select("Kuukausi", months.Values...).
		Select("Maksutase-erä", cfg.Items...).
		Select("Tiedot", cfg.Info...)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch trade balance: %w", err)
	}

	data := BuildTradeBalance(records)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Current account and balance of payments, yearly totals")
	data.Metadata.Unit = "Million EUR"

	return env.Writer.WriteDataset("trade_balance", data)
}

type tradeTotals struct {
	goodsExports    float64
	goodsImports    float64
	servicesExports float64
	servicesImports float64
	currentAccount  float64
}

// BuildTradeBalance sums monthly flows into years and derives the
// balance and share figures.
func BuildTradeBalance(records []tilasto.Record) *TradeBalanceData {
	byYear := make(map[int]*tradeTotals)

	for i := range records {
		r := &records[i]
		// Month codes look like "2006M01".
		year, ok := tilasto.ParseYear(r.Code("Kuukausi"))
		if !ok {
			continue
		}
		totals, found := byYear[year]
		if !found {
			totals = &tradeTotals{}
			byYear[year] = totals
		}

		item := r.Code("Maksutase-erä")
		info := r.Code("Tiedot")
		switch {
		case item == "G" && info == "C":
			totals.goodsExports += r.Value
		case item == "G" && info == "D":
			totals.goodsImports += r.Value
		case item == "S" && info == "C":
			totals.servicesExports += r.Value
		case item == "S" && info == "D":
			totals.servicesImports += r.Value
		case item == "CA" && info == "B":
			totals.currentAccount += r.Value
		}
	}

	years := make(tilasto.Series, len(byYear))
	for y := range byYear {
		years[y] = 0
	}

	data := &TradeBalanceData{}
	for _, year := range years.Years() {
		totals := byYear[year]
		exports := totals.goodsExports + totals.servicesExports
		imports := totals.goodsImports + totals.servicesImports

		entry := TradeYear{
			Year:            year,
			ExportsTotal:    exports,
			ImportsTotal:    imports,
			TradeBalance:    exports - imports,
			GoodsBalance:    totals.goodsExports - totals.goodsImports,
			ServicesBalance: totals.servicesExports - totals.servicesImports,
			GoodsExports:    totals.goodsExports,
			GoodsImports:    totals.goodsImports,
			ServicesExports: totals.servicesExports,
			ServicesImports: totals.servicesImports,
			CurrentAccount:  totals.currentAccount,
		}
		if imports > 0 {
			coverage := tilasto.Round2(100 * exports / imports)
			entry.ExportCoverage = &coverage
		}
		if exports > 0 {
			share := tilasto.Round2(100 * totals.servicesExports / exports)
			entry.ServicesSharePct = &share
		}
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	data.Summary = buildTradeSummary(data.TimeSeries)

	return data
}

func buildTradeSummary(series []TradeYear) *TradeSummary {
	if len(series) < 2 {
		return nil
	}

	first, last := series[0], series[len(series)-1]
	peak := series[0]
	surplus, deficit := 0, 0
	for _, y := range series {
		if y.TradeBalance > peak.TradeBalance {
			peak = y
		}
		switch {
		case y.TradeBalance > 0:
			surplus++
		case y.TradeBalance < 0:
			deficit++
		}
	}

	shareChange := deref(last.ServicesSharePct) - deref(first.ServicesSharePct)

	return &TradeSummary{
		Period:                strconv.Itoa(first.Year) + "-" + strconv.Itoa(last.Year),
		CurrentBalanceBillion: tilasto.Round2(last.TradeBalance / 1000),
		PeakYear:              peak.Year,
		PeakBalanceBillion:    tilasto.Round2(peak.TradeBalance / 1000),
		SurplusYears:          surplus,
		DeficitYears:          deficit,
		ServicesShareChange:   tilasto.Round2(shareChange),
		KeyInsight: fmt.Sprintf(
			"Finland went from a %.1fB EUR balance in %d to %.1fB EUR in %d",
			first.TradeBalance/1000, first.Year, last.TradeBalance/1000, last.Year),
	}
}
