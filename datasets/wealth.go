package datasets

import (
	"context"
	"fmt"

	"tilasto"
	"tilasto/pxweb"
)

// WealthConfig selects the household wealth survey slice. The survey
// does not run yearly; Years lists the available waves.
type WealthConfig struct {
	Table    string
	BaseYear int
	Metrics  []string
	Deciles  []string
	Years    []string
	// Information type codes for real-term mean and median.
	MeanCode   string
	MedianCode string
}

func DefaultWealthConfig() WealthConfig {
	return WealthConfig{
		Table:    "StatFin/vtutk/statfin_vtutk_pxt_151u.px",
		BaseYear: 2016,
		// nettoae_DN3001 = net wealth, bruttoae_DA1000 = total
		// assets, realvar = real wealth, finan = financial assets,
		// luototy = total debt, asuntm = housing loans, kturaha =
		// disposable income.
		Metrics:    []string{"nettoae_DN3001", "bruttoae_DA1000", "realvar", "finan", "luototy", "asuntm", "kturaha"},
		Deciles:    []string{"SS", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
		Years:      []string{"2004", "2009", "2013", "2016", "2019", "2023"},
		MeanCode:   "vtutk_keskiarvo_r",
		MedianCode: "vtutk_mediaani_r",
	}
}

// WealthDecile holds one decile's wealth metrics for one survey year.
type WealthDecile struct {
	Mean         map[string]float64 `json:"mean"`
	Median       map[string]float64 `json:"median"`
	DebtToIncome *float64           `json:"debt_to_income"`
	WealthIndex  *float64           `json:"wealth_index"`
}

// WealthEntry is one survey year across all deciles.
type WealthEntry struct {
	Year    int                      `json:"year"`
	Deciles map[string]*WealthDecile `json:"deciles"`
}

// WealthData is the household wealth dataset.
type WealthData struct {
	Metadata     tilasto.Metadata  `json:"metadata"`
	DecileLabels map[string]string `json:"decile_labels"`
	TimeSeries   []WealthEntry     `json:"time_series"`
}

// RunWealthDeciles fetches net wealth and debt by decile for the
// survey years.
func RunWealthDeciles(ctx context.Context, env Env) error {
	cfg := DefaultWealthConfig()

	q := pxweb.NewQuery().
		Select("Varallisuuslaji", cfg.Metrics...).
		Select("Tulokymmenys", cfg.Deciles...).
		Select("Vuosi", cfg.Years...).
		Select("Tiedot", cfg.MeanCode, cfg.MedianCode)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch wealth deciles: %w", err)
	}

	data := BuildWealthData(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Household wealth by income decile, real terms")
	data.Metadata.BaseYear = cfg.BaseYear

	return env.Writer.WriteDataset("wealth_deciles", data)
}

// BuildWealthData pivots records into per-year decile metrics and
// derives the debt-to-income ratio and the net wealth index against
// the base survey year.
func BuildWealthData(records []tilasto.Record, cfg WealthConfig) *WealthData {
	data := &WealthData{DecileLabels: make(map[string]string)}

	byYear := make(map[int]map[string]*WealthDecile)
	for i := range records {
		r := &records[i]
		year, ok := tilasto.ParseYear(r.Code("Vuosi"))
		if !ok {
			continue
		}

		decile := r.Code("Tulokymmenys")
		data.DecileLabels[decile] = r.Label("Tulokymmenys")

		if _, ok := byYear[year]; !ok {
			byYear[year] = make(map[string]*WealthDecile)
		}
		if _, ok := byYear[year][decile]; !ok {
			byYear[year][decile] = &WealthDecile{
				Mean:   make(map[string]float64),
				Median: make(map[string]float64),
			}
		}

		metric := r.Code("Varallisuuslaji")
		switch r.Code("Tiedot") {
		case cfg.MeanCode:
			byYear[year][decile].Mean[metric] = r.Value
		case cfg.MedianCode:
			byYear[year][decile].Median[metric] = r.Value
		}
	}

	years := make(tilasto.Series, len(byYear))
	for year := range byYear {
		years[year] = 0
	}
	for _, year := range years.Years() {
		data.TimeSeries = append(data.TimeSeries, WealthEntry{Year: year, Deciles: byYear[year]})
	}

	base := byYear[cfg.BaseYear]
	for _, entry := range data.TimeSeries {
		for decile, wd := range entry.Deciles {
			income := wd.Mean["kturaha"]
			if income > 0 {
				ratio := tilasto.Round1(wd.Mean["luototy"] / income * 100)
				wd.DebtToIncome = &ratio
			}

			if base == nil {
				continue
			}
			baseDecile, ok := base[decile]
			if !ok {
				continue
			}
			baseWealth := baseDecile.Median["nettoae_DN3001"]
			current := wd.Median["nettoae_DN3001"]
			if baseWealth > 0 && current != 0 {
				idx := tilasto.Round1(current / baseWealth * 100)
				wd.WealthIndex = &idx
			}
		}
	}

	return data
}
