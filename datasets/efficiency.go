package datasets

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"tilasto"
	"tilasto/pxweb"
)

// EfficiencyConfig selects the social protection branch of the
// expenditure table broken down by transaction type. Cash and in-kind
// benefits count as money reaching citizens; employee compensation
// and intermediate consumption count as administration.
type EfficiencyConfig struct {
	Table string
	// D62K cash benefits, D632K in-kind via providers, D1K wages,
	// P2K intermediate consumption, OTES consolidated total.
	Transactions []string
	Subfunctions map[string]string
	// Subcategories below this total are dropped from the breakdown.
	MinTotalMillion float64
	// Only subcategories above this total compete for the most and
	// least efficient slots.
	SignificantMillion float64
}

func DefaultEfficiencyConfig() EfficiencyConfig {
	return EfficiencyConfig{
		Table:        "StatFin/jmete/statfin_jmete_pxt_12a6.px",
		Transactions: []string{"D62K", "D632K", "D1K", "P2K", "OTES"},
		Subfunctions: map[string]string{
			"G1001": "Sickness and disability",
			"G1002": "Old age (pensions)",
			"G1003": "Survivors",
			"G1004": "Family and children",
			"G1005": "Unemployment",
			"G1006": "Housing assistance",
			"G1007": "Social exclusion",
			"G1008": "R&D social protection",
			"G1009": "Other social protection",
		},
		MinTotalMillion:    10,
		SignificantMillion: 500,
	}
}

// EfficiencyBreakdown splits one function-year's spending by where
// the money went.
type EfficiencyBreakdown struct {
	TotalMillion       float64 `json:"total_million"`
	BenefitsMillion    float64 `json:"benefits_million"`
	CashMillion        float64 `json:"d62k_million"`
	InKindMillion      float64 `json:"d632k_million"`
	BureaucracyMillion float64 `json:"bureaucracy_million"`
	OverheadMillion    float64 `json:"overhead_million"`
	OtherMillion       float64 `json:"other_million"`
	EfficiencyPct      float64 `json:"efficiency_pct"`
	BureaucracyPct     float64 `json:"bureaucracy_pct"`
	OverheadPct        float64 `json:"overhead_pct"`
}

// EfficiencyYear is one year in a function's efficiency series.
type EfficiencyYear struct {
	Year               int     `json:"year"`
	TotalMillion       float64 `json:"total_million"`
	TotalGDPPct        float64 `json:"total_gdp_pct"`
	BenefitsMillion    float64 `json:"benefits_million"`
	BureaucracyMillion float64 `json:"bureaucracy_million"`
	EfficiencyPct      float64 `json:"efficiency_pct"`
	BureaucracyPct     float64 `json:"bureaucracy_pct"`
}

// EfficiencySubcategory is one social protection branch with its
// latest breakdown and history.
type EfficiencySubcategory struct {
	Code string `json:"code"`
	Name string `json:"name"`
	EfficiencyBreakdown
	TimeSeries []EfficiencyYear `json:"time_series"`
}

// EfficiencyHighlight names one subcategory in the summary.
type EfficiencyHighlight struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	EfficiencyPct  float64 `json:"efficiency_pct,omitempty"`
	BureaucracyPct float64 `json:"bureaucracy_pct,omitempty"`
	TotalBillion   float64 `json:"total_billion"`
}

// EfficiencySummary holds the latest-year headline figures.
type EfficiencySummary struct {
	Year               int                  `json:"year"`
	TotalBillion       float64              `json:"total_billion"`
	TotalGDPPct        float64              `json:"total_gdp_pct"`
	BenefitsBillion    float64              `json:"benefits_billion"`
	BureaucracyBillion float64              `json:"bureaucracy_billion"`
	EfficiencyPct      float64              `json:"efficiency_pct"`
	BureaucracyPct     float64              `json:"bureaucracy_pct"`
	MostEfficient      *EfficiencyHighlight `json:"most_efficient"`
	LeastEfficient     *EfficiencyHighlight `json:"least_efficient"`
	MostBureaucratic   *EfficiencyHighlight `json:"most_bureaucratic"`
	// Correlation between subcategory size and efficiency in the
	// latest year. Negative means bigger branches deliver less of
	// each euro as benefits.
	SizeEfficiencyCorrelation float64 `json:"size_efficiency_correlation"`
}

// SpendingEfficiencyData is the output of the spending efficiency job.
type SpendingEfficiencyData struct {
	Metadata      tilasto.Metadata        `json:"metadata"`
	Summary       EfficiencySummary       `json:"summary"`
	G10TimeSeries []EfficiencyYear        `json:"g10_time_series"`
	Subcategories []EfficiencySubcategory `json:"subcategories"`
}

// RunSpendingEfficiency fetches social protection expenditure by
// transaction type and writes the benefits-versus-administration
// analysis.
func RunSpendingEfficiency(ctx context.Context, env Env) error {
	cfg := DefaultEfficiencyConfig()

	functions := []string{"G10"}
	for code := range cfg.Subfunctions {
		functions = append(functions, code)
	}
	sort.Strings(functions)

	q := pxweb.NewQuery().
		Select("Sektori", "S13").
		Select("Taloustoimi", cfg.Transactions...).
		Select("Tehtävä", functions...).
		SelectAll("Vuosi").
		Select("Tiedot", "cp", "bkt_suhde")

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch spending efficiency: %w", err)
	}

	data := BuildSpendingEfficiency(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Social protection expenditure split into benefits and administration")

	return env.Writer.WriteDataset("spending_efficiency", data)
}

// efficiencyCells holds current-price and GDP-share values keyed by
// (year, function, transaction).
type efficiencyCells struct {
	cp  map[[3]string]float64
	gdp map[[3]string]float64
}

func (c efficiencyCells) key(year int, function, transaction string) [3]string {
	return [3]string{strconv.Itoa(year), function, transaction}
}

func indexEfficiency(records []tilasto.Record) (efficiencyCells, []int) {
	cells := efficiencyCells{
		cp:  make(map[[3]string]float64),
		gdp: make(map[[3]string]float64),
	}
	yearSet := make(map[int]bool)

	for i := range records {
		r := &records[i]
		year, err := strconv.Atoi(r.Code("Vuosi"))
		if err != nil {
			continue
		}
		key := [3]string{r.Code("Vuosi"), r.Code("Tehtävä"), r.Code("Taloustoimi")}
		switch r.Code("Tiedot") {
		case "cp":
			cells.cp[key] = r.Value
		case "bkt_suhde":
			cells.gdp[key] = r.Value
		}
		yearSet[year] = true
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	return cells, years
}

// calcEfficiency builds the transaction breakdown for one function
// and year, or nil when the function has no reported total.
func calcEfficiency(cells efficiencyCells, function string, year int) *EfficiencyBreakdown {
	total := cells.cp[cells.key(year, function, "OTES")]
	if total == 0 {
		return nil
	}

	cash := cells.cp[cells.key(year, function, "D62K")]
	inKind := cells.cp[cells.key(year, function, "D632K")]
	benefits := cash + inKind
	bureaucracy := cells.cp[cells.key(year, function, "D1K")]
	overhead := cells.cp[cells.key(year, function, "P2K")]
	other := total - benefits - bureaucracy - overhead
	if other < 0 {
		other = 0
	}

	return &EfficiencyBreakdown{
		TotalMillion:       tilasto.Round1(total),
		BenefitsMillion:    tilasto.Round1(benefits),
		CashMillion:        tilasto.Round1(cash),
		InKindMillion:      tilasto.Round1(inKind),
		BureaucracyMillion: tilasto.Round1(bureaucracy),
		OverheadMillion:    tilasto.Round1(overhead),
		OtherMillion:       tilasto.Round1(other),
		EfficiencyPct:      tilasto.Round1(benefits / total * 100),
		BureaucracyPct:     tilasto.Round1(bureaucracy / total * 100),
		OverheadPct:        tilasto.Round1(overhead / total * 100),
	}
}

func efficiencySeries(cells efficiencyCells, function string, years []int) []EfficiencyYear {
	var series []EfficiencyYear
	for _, year := range years {
		eff := calcEfficiency(cells, function, year)
		if eff == nil {
			continue
		}
		series = append(series, EfficiencyYear{
			Year:               year,
			TotalMillion:       eff.TotalMillion,
			TotalGDPPct:        tilasto.Round2(cells.gdp[cells.key(year, function, "OTES")]),
			BenefitsMillion:    eff.BenefitsMillion,
			BureaucracyMillion: eff.BureaucracyMillion,
			EfficiencyPct:      eff.EfficiencyPct,
			BureaucracyPct:     eff.BureaucracyPct,
		})
	}

	return series
}

// BuildSpendingEfficiency reshapes the transaction records into the
// per-subcategory analysis and the G10 totals.
func BuildSpendingEfficiency(records []tilasto.Record, cfg EfficiencyConfig) *SpendingEfficiencyData {
	cells, years := indexEfficiency(records)
	data := &SpendingEfficiencyData{}
	if len(years) == 0 {
		return data
	}
	latest := years[len(years)-1]

	for code, name := range cfg.Subfunctions {
		eff := calcEfficiency(cells, code, latest)
		if eff == nil || eff.TotalMillion < cfg.MinTotalMillion {
			continue
		}
		data.Subcategories = append(data.Subcategories, EfficiencySubcategory{
			Code:                code,
			Name:                name,
			EfficiencyBreakdown: *eff,
			TimeSeries:          efficiencySeries(cells, code, years),
		})
	}
	sort.Slice(data.Subcategories, func(i, j int) bool {
		return data.Subcategories[i].TotalMillion > data.Subcategories[j].TotalMillion
	})

	data.G10TimeSeries = efficiencySeries(cells, "G10", years)
	data.Summary = buildEfficiencySummary(cells, data.Subcategories, latest, cfg)

	return data
}

func buildEfficiencySummary(cells efficiencyCells, subs []EfficiencySubcategory, latest int, cfg EfficiencyConfig) EfficiencySummary {
	summary := EfficiencySummary{Year: latest}

	if g10 := calcEfficiency(cells, "G10", latest); g10 != nil {
		summary.TotalBillion = tilasto.Round1(g10.TotalMillion / 1000)
		summary.BenefitsBillion = tilasto.Round1(g10.BenefitsMillion / 1000)
		summary.BureaucracyBillion = tilasto.Round1(g10.BureaucracyMillion / 1000)
		summary.EfficiencyPct = g10.EfficiencyPct
		summary.BureaucracyPct = g10.BureaucracyPct
	}
	summary.TotalGDPPct = tilasto.Round1(cells.gdp[cells.key(latest, "G10", "OTES")])

	var significant []EfficiencySubcategory
	for _, s := range subs {
		if s.TotalMillion > cfg.SignificantMillion {
			significant = append(significant, s)
		}
	}
	if len(significant) > 0 {
		most, least, bureaucratic := significant[0], significant[0], significant[0]
		for _, s := range significant[1:] {
			if s.EfficiencyPct > most.EfficiencyPct {
				most = s
			}
			if s.EfficiencyPct < least.EfficiencyPct {
				least = s
			}
			if s.BureaucracyPct > bureaucratic.BureaucracyPct {
				bureaucratic = s
			}
		}
		summary.MostEfficient = &EfficiencyHighlight{
			Code:          most.Code,
			Name:          most.Name,
			EfficiencyPct: most.EfficiencyPct,
			TotalBillion:  tilasto.Round1(most.TotalMillion / 1000),
		}
		summary.LeastEfficient = &EfficiencyHighlight{
			Code:          least.Code,
			Name:          least.Name,
			EfficiencyPct: least.EfficiencyPct,
			TotalBillion:  tilasto.Round1(least.TotalMillion / 1000),
		}
		summary.MostBureaucratic = &EfficiencyHighlight{
			Code:           bureaucratic.Code,
			Name:           bureaucratic.Name,
			BureaucracyPct: bureaucratic.BureaucracyPct,
			TotalBillion:   tilasto.Round1(bureaucratic.TotalMillion / 1000),
		}
	}

	sizes := make([]float64, 0, len(subs))
	efficiencies := make([]float64, 0, len(subs))
	for _, s := range subs {
		sizes = append(sizes, s.TotalMillion)
		efficiencies = append(efficiencies, s.EfficiencyPct)
	}
	summary.SizeEfficiencyCorrelation = tilasto.Round2(tilasto.Pearson(sizes, efficiencies))

	return summary
}
