package datasets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tilasto"
	"tilasto/pxweb"
)

// FertilityConfig selects the fertility rate table and the labour
// force table holding female participation rates.
type FertilityConfig struct {
	FertilityTable string
	LaborTable     string
	// A total fertility rate below this level means population
	// decline without immigration.
	ReplacementLevel float64
}

func DefaultFertilityConfig() FertilityConfig {
	return FertilityConfig{
		FertilityTable:   "StatFin/synt/statfin_synt_pxt_12dt.px",
		LaborTable:       "StatFin/tyti/statfin_tyti_pxt_135y.px",
		ReplacementLevel: 2.1,
	}
}

// FertilityYear pairs the fertility rate with female labour
// participation for one year. Either side may be missing.
type FertilityYear struct {
	Year                     int      `json:"year"`
	TFR                      *float64 `json:"tfr"`
	FemaleLaborParticipation *float64 `json:"female_labor_participation"`
	ReplacementGap           *float64 `json:"replacement_gap,omitempty"`
}

// FertilitySummary holds the trajectory headlines.
type FertilitySummary struct {
	Period                string   `json:"period"`
	CurrentTFR            float64  `json:"current_tfr"`
	PeakYear              int      `json:"peak_year"`
	PeakTFR               float64  `json:"peak_tfr"`
	TroughYear            int      `json:"trough_year"`
	TroughTFR             float64  `json:"trough_tfr"`
	BelowReplacementSince *int     `json:"below_replacement_since"`
	TFRChangeSince1990    *float64 `json:"tfr_change_since_1990"`
}

// FertilityData is the output of the fertility job.
type FertilityData struct {
	Metadata   tilasto.Metadata  `json:"metadata"`
	Summary    *FertilitySummary `json:"summary"`
	TimeSeries []FertilityYear   `json:"time_series"`
}

// RunFertility fetches the total fertility rate series and, when
// available, female labour participation, and writes the combined
// series. A failing labour fetch does not fail the job.
func RunFertility(ctx context.Context, env Env) error {
	cfg := DefaultFertilityConfig()

	fertility, err := fetchFertilitySeries(ctx, env.Client, cfg.FertilityTable)
	if err != nil {
		return fmt.Errorf("failed to fetch fertility rate: %w", err)
	}

	labor, err := fetchFemaleLaborSeries(ctx, env.Client, cfg.LaborTable)
	if err != nil {
		env.Logger.Warn("labor participation unavailable, writing fertility only",
			zap.Error(err))
		labor = tilasto.Series{}
	}

	data := BuildFertilityData(fertility, labor, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.FertilityTable,
		"Total fertility rate and female labor force participation")

	return env.Writer.WriteDataset("fertility", data)
}

// fetchFertilitySeries queries every year of the fertility table,
// pinning all remaining dimensions to their totals.
func fetchFertilitySeries(ctx context.Context, c *pxweb.Client, table string) (tilasto.Series, error) {
	meta, err := c.TableMeta(ctx, table)
	if err != nil {
		return nil, err
	}

	q := pxweb.NewQuery()
	for _, v := range meta.Variables {
		switch {
		case v.Code == "Vuosi":
			q.Select("Vuosi", v.Values...)
		case v.Code == "Tiedot":
			// Content dimension defaults to all values.
		case len(v.Values) > 0:
			code := v.Values[0]
			for _, cand := range v.Values {
				if cand == "SSS" {
					code = cand
					break
				}
			}
			q.Select(v.Code, code)
		}
	}

	t, err := c.Table(ctx, table, q)
	if err != nil {
		return nil, err
	}
	records, err := tilasto.Decode(t)
	if err != nil {
		return nil, err
	}

	return tilasto.SeriesByYear(records, "Vuosi"), nil
}

// fetchFemaleLaborSeries queries the participation rate for women
// only, locating the female category from the value texts.
func fetchFemaleLaborSeries(ctx context.Context, c *pxweb.Client, table string) (tilasto.Series, error) {
	meta, err := c.TableMeta(ctx, table)
	if err != nil {
		return nil, err
	}

	years, ok := meta.Variable("Vuosi")
	if !ok {
		return nil, fmt.Errorf("labor table has no year variable")
	}
	sex, ok := meta.Variable("Sukupuoli")
	if !ok {
		return nil, fmt.Errorf("labor table has no sex variable")
	}

	female := sex.Values[0]
	for i, code := range sex.Values {
		text := ""
		if i < len(sex.ValueTexts) {
			text = strings.ToLower(sex.ValueTexts[i])
		}
		if strings.Contains(text, "female") || strings.Contains(text, "naiset") || code == "2" {
			female = code
			break
		}
	}

	q := pxweb.NewQuery().
		Select("Vuosi", years.Values...).
		Select("Sukupuoli", female)

	t, err := c.Table(ctx, table, q)
	if err != nil {
		return nil, err
	}
	records, err := tilasto.Decode(t)
	if err != nil {
		return nil, err
	}

	return tilasto.SeriesByYear(records, "Vuosi"), nil
}

// BuildFertilityData merges the two series over their union of years
// and derives the replacement level summary.
func BuildFertilityData(fertility, labor tilasto.Series, cfg FertilityConfig) *FertilityData {
	merged := make(tilasto.Series, len(fertility)+len(labor))
	for y := range fertility {
		merged[y] = 0
	}
	for y := range labor {
		merged[y] = 0
	}

	data := &FertilityData{}
	for _, year := range merged.Years() {
		entry := FertilityYear{Year: year}
		if tfr, ok := fertility[year]; ok {
			v := tfr
			entry.TFR = &v
			gap := tilasto.Round2(cfg.ReplacementLevel - tfr)
			entry.ReplacementGap = &gap
		}
		if rate, ok := labor[year]; ok {
			v := rate
			entry.FemaleLaborParticipation = &v
		}
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	if len(fertility) < 2 {
		return data
	}

	years := fertility.Years()
	first, last := years[0], years[len(years)-1]
	summary := &FertilitySummary{
		Period:     strconv.Itoa(first) + "-" + strconv.Itoa(last),
		CurrentTFR: fertility[last],
		PeakYear:   first,
		PeakTFR:    fertility[first],
		TroughYear: first,
		TroughTFR:  fertility[first],
	}
	for _, year := range years {
		tfr := fertility[year]
		if tfr > summary.PeakTFR {
			summary.PeakYear, summary.PeakTFR = year, tfr
		}
		if tfr < summary.TroughTFR {
			summary.TroughYear, summary.TroughTFR = year, tfr
		}
		if summary.BelowReplacementSince == nil && tfr < cfg.ReplacementLevel {
			y := year
			summary.BelowReplacementSince = &y
		}
	}
	for _, year := range years {
		if year >= 1990 {
			change := tilasto.Round2(fertility[last] - fertility[year])
			summary.TFRChangeSince1990 = &change
			break
		}
	}
	data.Summary = summary

	return data
}
