package datasets

import (
	"context"
	"fmt"

	"tilasto"
)

// EssentialsConfig weights the goods a low income household cannot cut
// back on. Weights follow a typical low income budget and sum to 1.
type EssentialsConfig struct {
	BaseYear    int
	OverallCode string
	Weights     map[string]float64
	Names       map[string]string

	// Split of the comparison asset index.
	HousingShare float64
	StockShare   float64
}

func DefaultEssentialsConfig() EssentialsConfig {
	return EssentialsConfig{
		BaseYear:    2015,
		OverallCode: "0",
		Weights: map[string]float64{
			"011":  0.35, // food
			"0411": 0.40, // rent
			"045":  0.15, // electricity and heating
			"0722": 0.10, // transport fuel
		},
		Names: map[string]string{
			"0":    "Official CPI",
			"011":  "Food",
			"0411": "Housing (Rent)",
			"045":  "Energy",
			"0722": "Fuel (Transport)",
		},
		HousingShare: 0.5,
		StockShare:   0.5,
	}
}

// IndexPoint is one indicator at one year: level and change against
// the previous year.
type IndexPoint struct {
	Index     float64 `json:"index"`
	YoYChange float64 `json:"yoy_change"`
}

// EssentialsEntry is one year of the comparison time series.
type EssentialsEntry struct {
	Year        int        `json:"year"`
	Essentials  IndexPoint `json:"essentials_cpi"`
	Official    IndexPoint `json:"official_cpi"`
	Assets      IndexPoint `json:"asset_index"`
	GDP         IndexPoint `json:"gdp_per_capita"`
	NominalWage IndexPoint `json:"nominal_wage"`
	RealWage    IndexPoint `json:"real_wage"`
	SP500       IndexPoint `json:"sp500"`

	// Essentials minus official: how much faster the basics rose.
	InflationGap float64 `json:"inflation_gap"`
	// Assets minus essentials: asset owners against wage earners.
	WealthGap float64 `json:"wealth_gap"`
}

// RangeSummary compresses a series into its endpoints.
type RangeSummary struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	TotalChangePct float64 `json:"total_change_pct"`
}

// EssentialsSummary is the headline comparison over the whole period.
type EssentialsSummary struct {
	Period      string       `json:"period"`
	Essentials  RangeSummary `json:"essentials_cpi"`
	Official    RangeSummary `json:"official_cpi"`
	Assets      RangeSummary `json:"asset_index"`
	GDP         RangeSummary `json:"gdp_per_capita"`
	NominalWage RangeSummary `json:"nominal_wage"`
	RealWage    RangeSummary `json:"real_wage"`
	SP500       RangeSummary `json:"sp500"`
	KeyInsight  string       `json:"key_insight"`
}

// BreakdownPoint is one year of one basket category.
type BreakdownPoint struct {
	Year  int     `json:"year"`
	Index float64 `json:"index"`
}

// CategoryBreakdown shows each basket category with its weight.
type CategoryBreakdown struct {
	Name   string           `json:"name"`
	Weight float64          `json:"weight"`
	Values []BreakdownPoint `json:"values"`
}

// EssentialsIndexData is the full output of the essentials index job.
type EssentialsIndexData struct {
	Metadata   tilasto.Metadata              `json:"metadata"`
	Summary    EssentialsSummary             `json:"summary"`
	TimeSeries []EssentialsEntry             `json:"time_series"`
	Breakdown  map[string]*CategoryBreakdown `json:"category_breakdown"`
	Weights    map[string]float64            `json:"weights"`
}

// RunEssentialsIndex derives the weighted essential goods index from
// the already written cpi and asset datasets.
func RunEssentialsIndex(_ context.Context, env Env) error {
	cpi := &CPIData{}
	if err := LoadDataset(env.DataDir, "cpi_data", cpi); err != nil {
		return err
	}

	assets := &AssetData{}
	if err := LoadDataset(env.DataDir, "asset_prices", assets); err != nil {
		return err
	}

	cfg := DefaultEssentialsConfig()
	data := BuildEssentialsIndex(cpi, assets, cfg)
	data.Metadata = env.Writer.Stamp(Source, "",
		"Essential goods price index against official CPI and asset prices")
	data.Metadata.BaseYear = cfg.BaseYear

	return env.Writer.WriteDataset("essentials_index", data)
}

// EssentialsSeries computes the weighted essentials index per year
// from per-category CPI series.
func EssentialsSeries(cpi *CPIData, cfg EssentialsConfig) tilasto.Series {
	overall, ok := cpi.Categories[cfg.OverallCode]
	if !ok {
		return tilasto.Series{}
	}

	out := make(tilasto.Series, len(overall.Values))
	for _, year := range overall.Values.Years() {
		perCategory := make(map[string]float64, len(cfg.Weights))
		for code := range cfg.Weights {
			if cat, ok := cpi.Categories[code]; ok {
				if v, ok := cat.Values[year]; ok {
					perCategory[code] = v
				}
			}
		}
		out[year] = tilasto.Round2(tilasto.WeightedIndex(perCategory, cfg.Weights))
	}

	return out
}

// seriesOf reads an asset series that may be absent from a dataset
// file written by an older run.
func seriesOf(s *AssetSeries) tilasto.Series {
	if s == nil {
		return tilasto.Series{}
	}

	return s.Values
}

// AssetIndexSeries combines housing and domestic stocks into one
// index per the configured split. Years without a stock observation
// are left out; a missing housing value defaults to the base level.
func AssetIndexSeries(assets *AssetData, cfg EssentialsConfig) tilasto.Series {
	domestic := seriesOf(assets.Domestic)
	housing := seriesOf(assets.Housing)

	out := make(tilasto.Series, len(domestic))
	for _, year := range domestic.Years() {
		h, ok := housing[year]
		if !ok {
			h = 100
		}
		out[year] = tilasto.Round2(h*cfg.HousingShare + domestic[year]*cfg.StockShare)
	}

	return out
}

// BuildEssentialsIndex assembles the full comparison dataset.
func BuildEssentialsIndex(cpi *CPIData, assets *AssetData, cfg EssentialsConfig) *EssentialsIndexData {
	essentials := EssentialsSeries(cpi, cfg)
	official := tilasto.Series{}
	if cat, ok := cpi.Categories[cfg.OverallCode]; ok {
		official = cat.Values
	}
	assetIndex := AssetIndexSeries(assets, cfg)

	indicators := map[string]tilasto.Series{
		"essentials": essentials,
		"official":   official,
		"assets":     assetIndex,
		"gdp":        seriesOf(assets.GDP),
		"nominal":    seriesOf(assets.WageNominal),
		"real":       seriesOf(assets.WageReal),
		"sp500":      seriesOf(assets.SP500),
	}
	changes := make(map[string]tilasto.Series, len(indicators))
	for name, s := range indicators {
		changes[name] = tilasto.YearOverYear(s)
	}

	point := func(name string, year int) IndexPoint {
		s := indicators[name]
		v, ok := s[year]
		if !ok {
			v = 100
		}

		return IndexPoint{Index: v, YoYChange: tilasto.Round2(changes[name][year])}
	}

	data := &EssentialsIndexData{
		Breakdown: make(map[string]*CategoryBreakdown),
		Weights:   cfg.Weights,
	}

	years := essentials.Years()
	for _, year := range years {
		entry := EssentialsEntry{
			Year:        year,
			Essentials:  point("essentials", year),
			Official:    point("official", year),
			Assets:      point("assets", year),
			GDP:         point("gdp", year),
			NominalWage: point("nominal", year),
			RealWage:    point("real", year),
			SP500:       point("sp500", year),
		}
		entry.InflationGap = tilasto.Round2(entry.Essentials.Index - entry.Official.Index)
		entry.WealthGap = tilasto.Round2(entry.Assets.Index - entry.Essentials.Index)
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	for code, weight := range cfg.Weights {
		cat, ok := cpi.Categories[code]
		if !ok {
			continue
		}
		data.Breakdown[code] = breakdownFor(code, weight, cat, cfg, years)
	}
	if cat, ok := cpi.Categories[cfg.OverallCode]; ok {
		data.Breakdown[cfg.OverallCode] = breakdownFor(cfg.OverallCode, 0, cat, cfg, years)
	}

	if len(years) > 0 {
		data.Summary = buildEssentialsSummary(indicators, years)
	}

	return data
}

func breakdownFor(code string, weight float64, cat *CPICategory, cfg EssentialsConfig, years []int) *CategoryBreakdown {
	name := cfg.Names[code]
	if name == "" {
		name = cat.Name
	}

	b := &CategoryBreakdown{Name: name, Weight: weight}
	for _, year := range years {
		if v, ok := cat.Values[year]; ok {
			b.Values = append(b.Values, BreakdownPoint{Year: year, Index: v})
		}
	}

	return b
}

func buildEssentialsSummary(indicators map[string]tilasto.Series, years []int) EssentialsSummary {
	first, last := years[0], years[len(years)-1]

	rangeOf := func(name string) RangeSummary {
		s := indicators[name]
		start, ok := s[first]
		if !ok {
			start = 100
		}
		end, ok := s[last]
		if !ok {
			end = 100
		}

		r := RangeSummary{Start: start, End: end}
		if start != 0 {
			r.TotalChangePct = tilasto.Round1((end - start) / start * 100)
		}

		return r
	}

	s := EssentialsSummary{
		Period:      fmt.Sprintf("%d-%d", first, last),
		Essentials:  rangeOf("essentials"),
		Official:    rangeOf("official"),
		Assets:      rangeOf("assets"),
		GDP:         rangeOf("gdp"),
		NominalWage: rangeOf("nominal"),
		RealWage:    rangeOf("real"),
		SP500:       rangeOf("sp500"),
	}
	s.KeyInsight = fmt.Sprintf(
		"Since %d, essential goods rose %.1f%% while real wages changed %.1f%%. The S&P 500 moved %.1f%% over the same period.",
		first, s.Essentials.TotalChangePct, s.RealWage.TotalChangePct, s.SP500.TotalChangePct)

	return s
}
