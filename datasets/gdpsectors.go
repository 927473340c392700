package datasets

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"tilasto"
	"tilasto/pxweb"
)

// GDPSectorConfig selects the value-added-by-industry table of the
// national accounts. Sectors is a candidate list filtered against the
// table's classification at run time.
type GDPSectorConfig struct {
	Table string
	// S1 total economy; B1GPH gross value added.
	Sector      string
	Transaction string
	Sectors     []string
	YearFrom    int
}

func DefaultGDPSectorConfig() GDPSectorConfig {
	return GDPSectorConfig{
		Table:       "StatFin/vtp/statfin_vtp_pxt_123h.px",
		Sector:      "S1",
		Transaction: "B1GPH",
		Sectors: []string{
			"SSS", "ALKUT", "BTE", "BTF", "C", "F", "GTU",
			"J", "K", "L", "OTQ", "O", "P", "Q",
		},
		YearFrom: 1990,
	}
}

// SectorGDP is one industry's gross value added in million EUR.
type SectorGDP struct {
	Label        string  `json:"label"`
	ValueMillion float64 `json:"value_million_eur"`
}

// GDPSectorYear is the sector composition of GDP in one year.
type GDPSectorYear struct {
	Year             int     `json:"year"`
	TotalGDP         float64 `json:"total_gdp"`
	PublicSectorGDP  float64 `json:"public_sector_gdp"`
	PrivateSectorGDP float64 `json:"private_sector_gdp"`
	ManufacturingGDP float64 `json:"manufacturing_gdp"`
	ICTGDP           float64 `json:"ict_gdp"`

	PublicSharePct        float64 `json:"public_share_pct"`
	PrivateSharePct       float64 `json:"private_share_pct"`
	ManufacturingSharePct float64 `json:"manufacturing_share_pct"`
	ICTSharePct           float64 `json:"ict_share_pct"`

	Sectors map[string]SectorGDP `json:"sectors"`
}

// GDPSectorData is the output of the GDP sectors job.
type GDPSectorData struct {
	Metadata   tilasto.Metadata `json:"metadata"`
	TimeSeries []GDPSectorYear  `json:"time_series"`
}

// RunGDPSectors fetches gross value added by industry from 1990
// onward and writes the public/private GDP composition.
func RunGDPSectors(ctx context.Context, env Env) error {
	cfg := DefaultGDPSectorConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch gdp table metadata: %w", err)
	}
	yearsVar, ok := meta.Variable("Vuosi")
	if !ok {
		return fmt.Errorf("gdp table has no year variable")
	}
	industryVar, ok := meta.Variable("Toimiala")
	if !ok {
		return fmt.Errorf("gdp table has no industry variable")
	}

	var years []string
	for _, code := range yearsVar.Values {
		if y, err := strconv.Atoi(code); err == nil && y >= cfg.YearFrom {
			years = append(years, code)
		}
	}
	industries := availableCodes(cfg.Sectors, industryVar.Values)

	q := pxweb.NewQuery().
		Select("Vuosi", years...).
		Select("Toimiala", industries...).
		Select("Sektori", cfg.Sector).
		Select("Taloustoimi", cfg.Transaction)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch gdp sectors: %w", err)
	}

	data := BuildGDPSectorData(records)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Gross value added by industry at current prices")

	return env.Writer.WriteDataset("gdp_sectors", data)
}

// BuildGDPSectorData groups value added by year and splits it into
// public (O-Q) and private production.
func BuildGDPSectorData(records []tilasto.Record) *GDPSectorData {
	byYear := make(map[int]*GDPSectorYear)

	for i := range records {
		r := &records[i]
		year, err := strconv.Atoi(r.Code("Vuosi"))
		if err != nil {
			continue
		}
		entry, ok := byYear[year]
		if !ok {
			entry = &GDPSectorYear{Year: year, Sectors: make(map[string]SectorGDP)}
			byYear[year] = entry
		}
		entry.Sectors[r.Code("Toimiala")] = SectorGDP{
			Label:        r.Label("Toimiala"),
			ValueMillion: r.Value,
		}
	}

	data := &GDPSectorData{}
	for _, entry := range byYear {
		entry.TotalGDP = entry.Sectors["SSS"].ValueMillion
		entry.ManufacturingGDP = entry.Sectors["C"].ValueMillion
		entry.ICTGDP = entry.Sectors["J"].ValueMillion

		if agg, ok := entry.Sectors["OTQ"]; ok {
			entry.PublicSectorGDP = agg.ValueMillion
		} else {
			entry.PublicSectorGDP = entry.Sectors["O"].ValueMillion +
				entry.Sectors["P"].ValueMillion + entry.Sectors["Q"].ValueMillion
		}

		if entry.TotalGDP > 0 {
			entry.PrivateSectorGDP = entry.TotalGDP - entry.PublicSectorGDP
			entry.PublicSharePct = tilasto.Round2(100 * entry.PublicSectorGDP / entry.TotalGDP)
			entry.PrivateSharePct = tilasto.Round2(100 * entry.PrivateSectorGDP / entry.TotalGDP)
			entry.ManufacturingSharePct = tilasto.Round2(100 * entry.ManufacturingGDP / entry.TotalGDP)
			entry.ICTSharePct = tilasto.Round2(100 * entry.ICTGDP / entry.TotalGDP)
		}
		data.TimeSeries = append(data.TimeSeries, *entry)
	}

	sort.Slice(data.TimeSeries, func(i, j int) bool {
		return data.TimeSeries[i].Year < data.TimeSeries[j].Year
	})

	return data
}
