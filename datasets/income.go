package datasets

import (
	"context"
	"fmt"

	"tilasto"
	"tilasto/pxweb"
)

// IncomeConfig selects the disposable income table slice by decile.
type IncomeConfig struct {
	Table    string
	YearFrom int
	YearTo   int
	BaseYear int
	Metrics  []string
	Deciles  []string
}

func DefaultIncomeConfig() IncomeConfig {
	return IncomeConfig{
		Table:    "StatFin/tjt/statfin_tjt_pxt_128c.px",
		YearFrom: 2015,
		YearTo:   2024,
		BaseYear: 2015,
		// kturaha = disposable income mean, kturaha_med = median,
		// palk = earned, omtu = property, saatusi = transfers
		// received, makstu = transfers paid.
		Metrics: []string{"kturaha", "kturaha_med", "palk", "omtu", "saatusi", "makstu"},
		Deciles: []string{"SS", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
	}
}

// DecileMetrics holds one decile's metric values for one year, plus
// the disposable income index against the base year.
type DecileMetrics struct {
	Values      map[string]float64 `json:"values"`
	IncomeIndex *float64           `json:"income_index"`
}

// IncomeEntry is one year across all deciles.
type IncomeEntry struct {
	Year    int                       `json:"year"`
	Deciles map[string]*DecileMetrics `json:"deciles"`
}

// IncomeData is the income distribution dataset.
type IncomeData struct {
	Metadata     tilasto.Metadata  `json:"metadata"`
	MetricLabels map[string]string `json:"metric_labels"`
	DecileLabels map[string]string `json:"decile_labels"`
	TimeSeries   []IncomeEntry     `json:"time_series"`
}

// RunIncomeDeciles fetches income metrics by decile and year.
func RunIncomeDeciles(ctx context.Context, env Env) error {
	cfg := DefaultIncomeConfig()

	q := pxweb.NewQuery().
		Select("Tiedot", cfg.Metrics...).
		Select("Vuosi", yearCodes(cfg.YearFrom, cfg.YearTo)...).
		Select("Tulokymmenys", cfg.Deciles...)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch income deciles: %w", err)
	}

	data := BuildIncomeData(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Income and income structure of household-dwelling units by income decile")
	data.Metadata.BaseYear = cfg.BaseYear

	return env.Writer.WriteDataset("income_deciles", data)
}

// BuildIncomeData pivots records into the per-year, per-decile shape
// and derives the income index against the base year.
func BuildIncomeData(records []tilasto.Record, cfg IncomeConfig) *IncomeData {
	data := &IncomeData{
		MetricLabels: make(map[string]string),
		DecileLabels: make(map[string]string),
	}

	byYear := make(map[int]map[string]*DecileMetrics)
	for i := range records {
		r := &records[i]
		year, ok := tilasto.ParseYear(r.Code("Vuosi"))
		if !ok {
			continue
		}

		decile := r.Code("Tulokymmenys")
		metric := r.Code("Tiedot")
		data.MetricLabels[metric] = r.Label("Tiedot")
		data.DecileLabels[decile] = r.Label("Tulokymmenys")

		if _, ok := byYear[year]; !ok {
			byYear[year] = make(map[string]*DecileMetrics)
		}
		if _, ok := byYear[year][decile]; !ok {
			byYear[year][decile] = &DecileMetrics{Values: make(map[string]float64)}
		}
		byYear[year][decile].Values[metric] = r.Value
	}

	years := make(tilasto.Series, len(byYear))
	for year := range byYear {
		years[year] = 0
	}
	for _, year := range years.Years() {
		data.TimeSeries = append(data.TimeSeries, IncomeEntry{Year: year, Deciles: byYear[year]})
	}

	base := byYear[cfg.BaseYear]
	if base == nil {
		return data
	}
	for _, entry := range data.TimeSeries {
		for decile, dm := range entry.Deciles {
			baseDecile, ok := base[decile]
			if !ok {
				continue
			}
			baseIncome := baseDecile.Values["kturaha"]
			current := dm.Values["kturaha"]
			if baseIncome > 0 && current != 0 {
				idx := tilasto.Round1(current / baseIncome * 100)
				dm.IncomeIndex = &idx
			}
		}
	}

	return data
}
