package datasets

import (
	"context"
	"fmt"

	"tilasto"
	"tilasto/pxweb"
)

// MunicipalDebtConfig selects the municipal key figures table. The
// table lives in the municipal finances database, not under StatFin.
type MunicipalDebtConfig struct {
	Table string
	Year  string
	// Indicators in preferred order. Missing codes are skipped after
	// checking the table metadata.
	Indicators []string
}

func DefaultMunicipalDebtConfig() MunicipalDebtConfig {
	return MunicipalDebtConfig{
		Table: "Kuntien_talous_ja_toiminta/Kunnat/9._Tunnusluvut/006_kta_19_2020.px",
		Year:  "2020",
		Indicators: []string{
			"lainakanta_asuk",   // loan stock, EUR per capita
			"lainakanta_eur",    // loan stock, EUR 1,000
			"k_lainakanta_asuk", // consolidated loan stock, EUR per capita
			"k_lainakanta_eur",  // consolidated loan stock, EUR 1,000
			"suhteel_velkaant",  // relative indebtedness %
			"omavaraisuus_aste", // equity ratio %
		},
	}
}

// MunicipalityDebt is the debt position of one municipality. The
// consolidated group figures are used when reported, falling back to
// the municipality's own loan stock.
type MunicipalityDebt struct {
	MunicipalityCode        string             `json:"municipality_code"`
	MunicipalityName        string             `json:"municipality_name"`
	Year                    string             `json:"year"`
	LoanPerCapitaEUR        float64            `json:"loan_per_capita_eur"`
	TotalDebtEUR            float64            `json:"total_debt_eur"`
	RelativeIndebtednessPct float64            `json:"relative_indebtedness_pct"`
	EquityRatioPct          float64            `json:"equity_ratio_pct"`
	RawIndicators           map[string]float64 `json:"raw_indicators"`
}

// MunicipalDebtData is the output of the municipal debt job.
type MunicipalDebtData struct {
	Metadata       tilasto.Metadata   `json:"metadata"`
	Year           string             `json:"year"`
	Municipalities []MunicipalityDebt `json:"municipalities"`
}

// RunMunicipalDebt fetches the key figures for every municipality and
// writes one record per municipality.
func RunMunicipalDebt(ctx context.Context, env Env) error {
	cfg := DefaultMunicipalDebtConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch municipal table metadata: %w", err)
	}

	keyFigures, ok := meta.Variable("Tunnusluku")
	if !ok {
		return fmt.Errorf("municipal table has no key figure variable")
	}
	present := make(map[string]bool, len(keyFigures.Values))
	for _, code := range keyFigures.Values {
		present[code] = true
	}
	var indicators []string
	for _, code := range cfg.Indicators {
		if present[code] {
			indicators = append(indicators, code)
		}
	}
	if len(indicators) == 0 {
		return fmt.Errorf("municipal table has none of the requested key figures")
	}

	q := pxweb.NewQuery().
		SelectAll("Alue").
		Select("Tunnusluku", indicators...)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch municipal debt: %w", err)
	}

	data := BuildMunicipalDebt(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Municipal loan stock and solvency key figures")

	return env.Writer.WriteDataset("municipal_debt", data)
}

// BuildMunicipalDebt pivots the key figure records into one entry per
// municipality.
func BuildMunicipalDebt(records []tilasto.Record, cfg MunicipalDebtConfig) *MunicipalDebtData {
	grouped := tilasto.GroupByCode(records, "Alue")

	data := &MunicipalDebtData{Year: cfg.Year}
	for _, code := range sortedKeys(grouped) {
		group := grouped[code]
		indicators := make(map[string]float64, len(group))
		name := code
		for i := range group {
			r := &group[i]
			indicators[r.Code("Tunnusluku")] = r.Value
			name = r.Label("Alue")
		}

		perCapita := indicators["lainakanta_asuk"]
		total := indicators["lainakanta_eur"]
		if v := indicators["k_lainakanta_asuk"]; v > 0 {
			perCapita = v
		}
		if v := indicators["k_lainakanta_eur"]; v > 0 {
			total = v
		}

		data.Municipalities = append(data.Municipalities, MunicipalityDebt{
			MunicipalityCode:        code,
			MunicipalityName:        name,
			Year:                    cfg.Year,
			LoanPerCapitaEUR:        tilasto.Round2(perCapita),
			TotalDebtEUR:            tilasto.Round2(total * 1000),
			RelativeIndebtednessPct: tilasto.Round2(indicators["suhteel_velkaant"]),
			EquityRatioPct:          tilasto.Round2(indicators["omavaraisuus_aste"]),
			RawIndicators:           indicators,
		})
	}

	return data
}
