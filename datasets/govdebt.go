package datasets

import (
	"context"
	"fmt"
	"strings"

	"tilasto"
	"tilasto/pxweb"
)

// GovernmentDebtConfig selects the general government debt table. The
// table is quarterly; the Q4 observation is taken as the year-end
// snapshot.
type GovernmentDebtConfig struct {
	Table string
	// F2TF4 = cash, deposits, debt securities and loans combined.
	InstrumentCode string
	// K = EDP debt.
	InfoCode string
	Sectors  map[string]string
}

func DefaultGovernmentDebtConfig() GovernmentDebtConfig {
	return GovernmentDebtConfig{
		Table:          "StatFin/jyev/statfin_jyev_pxt_11yv.px",
		InstrumentCode: "F2TF4",
		InfoCode:       "K",
		Sectors: map[string]string{
			"S13_C": "General government (consolidated)",
			"S1311": "Central government",
			"S1313": "Local government",
			"S1314": "Social security funds",
		},
	}
}

// DebtEntry is the year-end debt position by sector, million EUR.
type DebtEntry struct {
	Year               int      `json:"year"`
	TotalDebt          float64  `json:"total_debt_million"`
	CentralDebt        float64  `json:"central_debt_million"`
	LocalDebt          float64  `json:"local_debt_million"`
	SocialSecurityDebt float64  `json:"social_security_debt_million"`
	CentralSharePct    *float64 `json:"central_share_pct,omitempty"`
	LocalSharePct      *float64 `json:"local_share_pct,omitempty"`
}

// DebtSummary compresses the debt series into headline figures.
type DebtSummary struct {
	Period             string   `json:"period"`
	CurrentDebtBillion float64  `json:"current_debt_billion"`
	DebtChangeBillion  float64  `json:"debt_change_billion"`
	DebtGrowthPct      *float64 `json:"debt_growth_pct"`
	CentralDebtBillion float64  `json:"central_debt_billion"`
	LocalDebtBillion   float64  `json:"local_debt_billion"`
}

// GovernmentDebtData is the output of the government debt job.
type GovernmentDebtData struct {
	Metadata   tilasto.Metadata `json:"metadata"`
	Summary    DebtSummary      `json:"summary"`
	TimeSeries []DebtEntry      `json:"time_series"`
}

// RunGovernmentDebt fetches quarterly EDP debt for every available
// quarter and sector and writes the yearly series.
func RunGovernmentDebt(ctx context.Context, env Env) error {
	cfg := DefaultGovernmentDebtConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch debt table metadata: %w", err)
	}

	quarters, ok := meta.Variable("Vuosineljännes")
	if !ok {
		return fmt.Errorf("debt table has no quarter variable")
	}
	sectors, ok := meta.Variable("Velallissektori")
	if !ok {
		return fmt.Errorf("debt table has no sector variable")
	}

	q := pxweb.NewQuery().
		Select("Vuosineljännes", quarters.Values...).
		Select("Velallissektori", sectors.Values...).
		Select("Vara", cfg.InstrumentCode).
		Select("Tiedot", cfg.InfoCode)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch government debt: %w", err)
	}

	data := BuildGovernmentDebt(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"General government EDP debt by sector, year-end values")
	data.Metadata.Unit = "Million EUR"

	return env.Writer.WriteDataset("government_debt", data)
}

// BuildGovernmentDebt keeps the Q4 observation of each year and
// derives sector shares and the growth summary.
func BuildGovernmentDebt(records []tilasto.Record, cfg GovernmentDebtConfig) *GovernmentDebtData {
	byYear := make(map[int]*DebtEntry)

	for i := range records {
		r := &records[i]
		quarter := r.Code("Vuosineljännes") // e.g. "2000Q4"
		if !strings.HasSuffix(quarter, "Q4") {
			continue
		}
		year, ok := tilasto.ParseYear(quarter)
		if !ok {
			continue
		}

		entry, ok := byYear[year]
		if !ok {
			entry = &DebtEntry{Year: year}
			byYear[year] = entry
		}

		switch r.Code("Velallissektori") {
		case "S13_C":
			entry.TotalDebt = r.Value
		case "S1311":
			entry.CentralDebt = r.Value
		case "S1313":
			entry.LocalDebt = r.Value
		case "S1314":
			entry.SocialSecurityDebt = r.Value
		}
	}

	data := &GovernmentDebtData{}
	years := make(tilasto.Series, len(byYear))
	for year := range byYear {
		years[year] = 0
	}
	for _, year := range years.Years() {
		entry := byYear[year]
		if entry.TotalDebt > 0 {
			central := tilasto.Round1(entry.CentralDebt / entry.TotalDebt * 100)
			local := tilasto.Round1(entry.LocalDebt / entry.TotalDebt * 100)
			entry.CentralSharePct = &central
			entry.LocalSharePct = &local
		}
		data.TimeSeries = append(data.TimeSeries, *entry)
	}

	if len(data.TimeSeries) >= 2 {
		first := data.TimeSeries[0]
		last := data.TimeSeries[len(data.TimeSeries)-1]
		change := last.TotalDebt - first.TotalDebt

		data.Summary = DebtSummary{
			Period:             fmt.Sprintf("%d-%d", first.Year, last.Year),
			CurrentDebtBillion: tilasto.Round1(last.TotalDebt / 1000),
			DebtChangeBillion:  tilasto.Round1(change / 1000),
			CentralDebtBillion: tilasto.Round1(last.CentralDebt / 1000),
			LocalDebtBillion:   tilasto.Round1(last.LocalDebt / 1000),
		}
		if first.TotalDebt > 0 {
			growth := tilasto.Round1(change / first.TotalDebt * 100)
			data.Summary.DebtGrowthPct = &growth
		}
	}

	return data
}
