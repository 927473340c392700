package datasets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"tilasto"
	"tilasto/pxweb"
)

// SubsidiesConfig selects the public funding flows from government to
// the private sector and households: D3K subsidies, D62K cash social
// benefits and D632K social transfers in kind bought from market
// producers.
type SubsidiesConfig struct {
	Table        string
	Transactions []string
	Functions    []string
	YearFrom     int
	// Nominal GDP in million EUR per year, for share-of-GDP figures.
	// The expenditure table itself carries no GDP reference for these
	// transaction codes.
	GDPEstimates map[int]float64
}

func DefaultSubsidiesConfig() SubsidiesConfig {
	return SubsidiesConfig{
		Table:        "StatFin/jmete/statfin_jmete_pxt_12a6.px",
		Transactions: []string{"D3K", "D62K", "D632K"},
		Functions:    []string{"SSS", "G04", "G0402", "G06", "G07", "G09", "G10"},
		YearFrom:     2015,
		GDPEstimates: map[int]float64{
			2015: 211000, 2016: 216000, 2017: 225000, 2018: 234000,
			2019: 240000, 2020: 237000, 2021: 252000, 2022: 268000,
			2023: 280000, 2024: 285000,
		},
	}
}

// SubsidiesYear is one year of public-to-private funding flows,
// million EUR.
type SubsidiesYear struct {
	Year int `json:"year"`

	SubsidiesTotal       float64 `json:"subsidies_total_million"`
	SubsidiesEconomic    float64 `json:"subsidies_economic_million"`
	SubsidiesAgriculture float64 `json:"subsidies_agriculture_million"`
	SubsidiesHousing     float64 `json:"subsidies_housing_million"`
	SubsidiesOther       float64 `json:"subsidies_other_million"`

	BenefitsTotal            float64 `json:"benefits_total_million"`
	BenefitsSocialProtection float64 `json:"benefits_social_protection_million"`

	PurchasedTotal     float64 `json:"purchased_total_million"`
	PurchasedHealth    float64 `json:"purchased_health_million"`
	PurchasedSocial    float64 `json:"purchased_social_million"`
	PurchasedEducation float64 `json:"purchased_education_million"`

	// D3K + D632K: money handed straight to market producers.
	DirectToPrivate float64 `json:"direct_public_to_private_million"`
	// All three categories combined.
	TotalPublicFunding float64 `json:"total_public_funding_million"`
}

// SubsidiesSummary holds the latest-year headline figures.
type SubsidiesSummary struct {
	Period              string  `json:"period"`
	StartYear           int     `json:"start_year"`
	EndYear             int     `json:"end_year"`
	CurrentTotalBillion float64 `json:"current_total_billion"`
	TotalPctOfGDP       float64 `json:"total_pct_of_gdp"`

	CurrentSubsidiesBillion float64 `json:"current_subsidies_billion"`
	CurrentBenefitsBillion  float64 `json:"current_benefits_billion"`
	CurrentPurchasedBillion float64 `json:"current_purchased_billion"`

	DirectToPrivateBillion float64 `json:"direct_public_to_private_billion"`
	DirectPctOfGDP         float64 `json:"direct_pct_of_gdp"`
	BenefitsPctOfGDP       float64 `json:"benefits_pct_of_gdp"`

	GrowthSinceStartPct float64 `json:"growth_since_start_pct"`
	KeyInsight          string  `json:"key_insight"`
}

// PublicSubsidiesData is the output of the public subsidies job.
type PublicSubsidiesData struct {
	Metadata   tilasto.Metadata  `json:"metadata"`
	Summary    *SubsidiesSummary `json:"summary"`
	TimeSeries []SubsidiesYear   `json:"time_series"`
}

// RunPublicSubsidies fetches subsidy, benefit and purchased-service
// expenditure and writes the public-to-private funding flows.
func RunPublicSubsidies(ctx context.Context, env Env) error {
	cfg := DefaultSubsidiesConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch subsidies table metadata: %w", err)
	}
	yearsVar, ok := meta.Variable("Vuosi")
	if !ok {
		return fmt.Errorf("subsidies table has no year variable")
	}
	// Preliminary years carry a trailing asterisk in their codes.
	var years []string
	for _, code := range yearsVar.Values {
		if y, ok := tilasto.ParseYear(code); ok && y >= cfg.YearFrom {
			years = append(years, code)
		}
	}

	q := pxweb.NewQuery().
		Select("Sektori", "S13").
		Select("Taloustoimi", cfg.Transactions...).
		Select("Tehtävä", cfg.Functions...).
		Select("Vuosi", years...).
		Select("Tiedot", "cp")

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch public subsidies: %w", err)
	}

	data := BuildPublicSubsidies(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Public funding flowing to the private sector through subsidies, social benefits and purchased services")

	return env.Writer.WriteDataset("public_subsidies", data)
}

// subsidyCells maps (year, function, transaction) to current-price
// values.
type subsidyCells map[[3]string]float64

func (c subsidyCells) get(year int, function, transaction string) float64 {
	return c[[3]string{strconv.Itoa(year), function, transaction}]
}

func indexSubsidies(records []tilasto.Record) (subsidyCells, []int) {
	cells := make(subsidyCells)
	yearSet := make(map[int]bool)

	for i := range records {
		r := &records[i]
		year, ok := tilasto.ParseYear(r.Code("Vuosi"))
		if !ok {
			continue
		}
		cells[[3]string{strconv.Itoa(year), r.Code("Tehtävä"), r.Code("Taloustoimi")}] = r.Value
		yearSet[year] = true
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	return cells, years
}

// BuildPublicSubsidies reshapes the transaction records into the
// yearly funding flow breakdown and the summary.
func BuildPublicSubsidies(records []tilasto.Record, cfg SubsidiesConfig) *PublicSubsidiesData {
	cells, years := indexSubsidies(records)
	data := &PublicSubsidiesData{}

	for _, year := range years {
		subsidies := cells.get(year, "SSS", "D3K")
		economic := cells.get(year, "G04", "D3K")
		housing := cells.get(year, "G06", "D3K")
		other := subsidies - economic - housing
		if other < 0 {
			other = 0
		}

		benefits := cells.get(year, "SSS", "D62K")
		purchased := cells.get(year, "SSS", "D632K")

		data.TimeSeries = append(data.TimeSeries, SubsidiesYear{
			Year:                 year,
			SubsidiesTotal:       math.Round(subsidies),
			SubsidiesEconomic:    math.Round(economic),
			SubsidiesAgriculture: math.Round(cells.get(year, "G0402", "D3K")),
			SubsidiesHousing:     math.Round(housing),
			SubsidiesOther:       math.Round(other),

			BenefitsTotal:            math.Round(benefits),
			BenefitsSocialProtection: math.Round(cells.get(year, "G10", "D62K")),

			PurchasedTotal:     math.Round(purchased),
			PurchasedHealth:    math.Round(cells.get(year, "G07", "D632K")),
			PurchasedSocial:    math.Round(cells.get(year, "G10", "D632K")),
			PurchasedEducation: math.Round(cells.get(year, "G09", "D632K")),

			DirectToPrivate:    math.Round(subsidies + purchased),
			TotalPublicFunding: math.Round(subsidies + benefits + purchased),
		})
	}

	if len(data.TimeSeries) > 0 {
		data.Summary = buildSubsidiesSummary(data.TimeSeries, cfg)
	}

	return data
}

func buildSubsidiesSummary(series []SubsidiesYear, cfg SubsidiesConfig) *SubsidiesSummary {
	first, last := series[0], series[len(series)-1]

	growth := 0.0
	if first.TotalPublicFunding > 0 {
		growth = (last.TotalPublicFunding - first.TotalPublicFunding) / first.TotalPublicFunding * 100
	}

	gdp, ok := cfg.GDPEstimates[last.Year]
	if !ok || gdp <= 0 {
		latest := 0
		for year, estimate := range cfg.GDPEstimates {
			if year > latest {
				latest, gdp = year, estimate
			}
		}
	}

	totalPct := last.TotalPublicFunding / gdp * 100
	summary := &SubsidiesSummary{
		Period:              strconv.Itoa(first.Year) + "-" + strconv.Itoa(last.Year),
		StartYear:           first.Year,
		EndYear:             last.Year,
		CurrentTotalBillion: tilasto.Round1(last.TotalPublicFunding / 1000),
		TotalPctOfGDP:       tilasto.Round1(totalPct),

		CurrentSubsidiesBillion: tilasto.Round1(last.SubsidiesTotal / 1000),
		CurrentBenefitsBillion:  tilasto.Round1(last.BenefitsTotal / 1000),
		CurrentPurchasedBillion: tilasto.Round1(last.PurchasedTotal / 1000),

		DirectToPrivateBillion: tilasto.Round1(last.DirectToPrivate / 1000),
		DirectPctOfGDP:         tilasto.Round1(last.DirectToPrivate / gdp * 100),
		BenefitsPctOfGDP:       tilasto.Round1(last.BenefitsTotal / gdp * 100),

		GrowthSinceStartPct: tilasto.Round1(growth),
		KeyInsight: fmt.Sprintf(
			"%.1fB EUR (%.0f%% of GDP) flows from government to the private sector and households",
			last.TotalPublicFunding/1000, totalPct),
	}

	return summary
}
