package datasets

import (
	"context"
	"fmt"

	"tilasto"
	"tilasto/pxweb"
)

// CPIConfig selects the consumer price index table slice: which
// commodity groups to fetch and for which years. The default set
// covers the headline index plus the essential goods used by the
// essentials index.
type CPIConfig struct {
	Table      string
	YearFrom   int
	YearTo     int
	InfoCode   string
	Categories map[string]string // commodity code -> display name
}

func DefaultCPIConfig() CPIConfig {
	return CPIConfig{
		Table:    "StatFin/khi/statfin_khi_pxt_11xc.px",
		YearFrom: 2015,
		YearTo:   2024,
		InfoCode: "indeksipisteluku",
		Categories: map[string]string{
			"0":    "Overall CPI",
			"011":  "Food",
			"0411": "Actual rentals for housing",
			"045":  "Electricity, gas and other fuels",
			"0721": "Fuels (spare parts)",
			"0722": "Fuels and lubricants",
		},
	}
}

// CPICategory is one commodity group's yearly index series.
type CPICategory struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Values      tilasto.Series `json:"values"`
}

// CPIData is the decoded consumer price dataset, one series per
// commodity group, index points with the table's base year = 100.
type CPIData struct {
	Metadata   tilasto.Metadata        `json:"metadata"`
	Categories map[string]*CPICategory `json:"categories"`
}

// RunCPI fetches the CPI table and writes the per-category series.
func RunCPI(ctx context.Context, env Env) error {
	cfg := DefaultCPIConfig()

	codes := make([]string, 0, len(cfg.Categories))
	for code := range cfg.Categories {
		codes = append(codes, code)
	}

	q := pxweb.NewQuery().
		Select("Vuosi", yearCodes(cfg.YearFrom, cfg.YearTo)...).
		Select("Hyödyke", codes...).
		Select("Tiedot", cfg.InfoCode)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch cpi: %w", err)
	}

	data := BuildCPIData(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table, "Consumer price index by commodity group")
	data.Metadata.BaseYear = cfg.YearFrom

	return env.Writer.WriteDataset("cpi_data", data)
}

// BuildCPIData groups decoded records into one series per commodity.
func BuildCPIData(records []tilasto.Record, cfg CPIConfig) *CPIData {
	data := &CPIData{Categories: make(map[string]*CPICategory)}

	for code, group := range tilasto.GroupByCode(records, "Hyödyke") {
		cat := &CPICategory{
			Description: cfg.Categories[code],
			Values:      tilasto.SeriesByYear(group, "Vuosi"),
		}
		if len(group) > 0 {
			cat.Name = group[0].Label("Hyödyke")
		}
		data.Categories[code] = cat
	}

	return data
}
