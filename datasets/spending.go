package datasets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"tilasto"
	"tilasto/pxweb"
)

// SpendingConfig selects the general government expenditure table.
// Functions follow the COFOG classification; name maps cover the main
// functions and the sub-functions shown in breakdowns.
type SpendingConfig struct {
	Table string
	// OTES = total expenditure, consolidated.
	TransactionCode string
	Sectors         []string
	Info            []string
	// Sub-function queries are capped to keep the request size sane.
	MaxSubfunctions  int
	FunctionNames    map[string]string
	SubfunctionNames map[string]string
	SectorNames      map[string]string
}

func DefaultSpendingConfig() SpendingConfig {
	return SpendingConfig{
		Table:           "StatFin/jmete/statfin_jmete_pxt_12a6.px",
		TransactionCode: "OTES",
		Sectors:         []string{"S13", "S1311", "S1313", "S1314"},
		Info:            []string{"cp", "bkt_suhde", "percapita"},
		MaxSubfunctions: 50,
		FunctionNames: map[string]string{
			"G01": "General public services",
			"G02": "Defence",
			"G03": "Public order and safety",
			"G04": "Economic affairs",
			"G05": "Environmental protection",
			"G06": "Housing and community",
			"G07": "Health",
			"G08": "Recreation, culture, religion",
			"G09": "Education",
			"G10": "Social protection",
		},
		SubfunctionNames: map[string]string{
			"G0101": "Executive and legislative",
			"G0102": "Foreign economic aid",
			"G0103": "General services",
			"G0104": "Basic research",
			"G0105": "R&D public services",
			"G0106": "Other public services",
			"G0107": "Public debt transactions",
			"G0108": "Transfers between govt levels",
			"G0201": "Military defence",
			"G0202": "Civil defence",
			"G0301": "Police services",
			"G0302": "Fire protection",
			"G0303": "Law courts",
			"G0304": "Prisons",
			"G0401": "Economic and labour affairs",
			"G0402": "Agriculture, forestry, fishing",
			"G0403": "Fuel and energy",
			"G0404": "Mining, manufacturing",
			"G0405": "Transport",
			"G0406": "Communications",
			"G0407": "Other industries",
			"G0408": "R&D economic affairs",
			"G0501": "Waste management",
			"G0502": "Waste water management",
			"G0503": "Pollution abatement",
			"G0504": "Biodiversity protection",
			"G0601": "Housing development",
			"G0602": "Community development",
			"G0603": "Water supply",
			"G0604": "Street lighting",
			"G0701": "Medical products",
			"G0702": "Outpatient services",
			"G0703": "Hospital services",
			"G0704": "Public health services",
			"G0801": "Recreation and sports",
			"G0802": "Cultural services",
			"G0803": "Broadcasting",
			"G0804": "Religious services",
			"G0901": "Pre-primary and primary",
			"G0902": "Secondary education",
			"G0903": "Post-secondary non-tertiary",
			"G0904": "Tertiary education",
			"G0905": "Other education",
			"G0906": "Subsidiary services",
			"G1001": "Sickness and disability",
			"G1002": "Old age",
			"G1003": "Survivors",
			"G1004": "Family and children",
			"G1005": "Unemployment",
			"G1006": "Housing assistance",
			"G1007": "Social exclusion",
		},
		SectorNames: map[string]string{
			"S13":   "General government (total)",
			"S1311": "Central government",
			"S1313": "Local government",
			"S1314": "Social security funds",
		},
	}
}

// mainFunctionCodes returns G01..G10 in order.
func mainFunctionCodes() []string {
	codes := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		codes = append(codes, fmt.Sprintf("G%02d", i))
	}

	return codes
}

// SpendingCategory is one COFOG function (or sub-function) in the
// latest year.
type SpendingCategory struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AmountMillion float64            `json:"amount_million"`
	PctOfGDP      float64            `json:"pct_of_gdp"`
	PerCapita     float64            `json:"per_capita"`
	Subcategories []SpendingCategory `json:"subcategories,omitempty"`
}

// SectorSpending is one government sub-sector's total in the latest
// year.
type SectorSpending struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	AmountMillion float64 `json:"amount_million"`
	PctOfGDP      float64 `json:"pct_of_gdp"`
	PerCapita     float64 `json:"per_capita"`
}

// CategoryAmount is one function's position within a yearly entry.
type CategoryAmount struct {
	AmountMillion float64 `json:"amount_million"`
	PctOfGDP      float64 `json:"pct_of_gdp"`
}

// SpendingYear is total spending and the per-function split for one
// year.
type SpendingYear struct {
	Year           int                       `json:"year"`
	TotalMillion   float64                   `json:"total_million"`
	TotalPctGDP    float64                   `json:"total_pct_gdp"`
	TotalPerCapita float64                   `json:"total_per_capita"`
	Categories     map[string]CategoryAmount `json:"categories"`
}

// SpendingSummary holds the headline figures for the latest year.
type SpendingSummary struct {
	Year                   int     `json:"year"`
	ComparisonYear         int     `json:"comparison_year"`
	TotalSpendingBillion   float64 `json:"total_spending_billion"`
	PctOfGDP               float64 `json:"pct_of_gdp"`
	PerCapita              float64 `json:"per_capita"`
	LargestCategory        string  `json:"largest_category"`
	LargestCategoryBillion float64 `json:"largest_category_billion"`
	LargestCategoryPct     float64 `json:"largest_category_pct"`
	FastestGrowing         string  `json:"fastest_growing"`
	FastestGrowingPct      float64 `json:"fastest_growing_pct"`
}

// PublicSpendingData is the output of the public spending job.
type PublicSpendingData struct {
	Metadata   tilasto.Metadata          `json:"metadata"`
	Summary    SpendingSummary           `json:"summary"`
	ByFunction []SpendingCategory        `json:"by_function"`
	BySector   map[string]SectorSpending `json:"by_sector"`
	TimeSeries []SpendingYear            `json:"time_series"`
	COFOGNames map[string]string         `json:"cofog_names"`
}

// RunPublicSpending fetches consolidated expenditure by COFOG function
// for every available year and writes the spending structure.
func RunPublicSpending(ctx context.Context, env Env) error {
	cfg := DefaultSpendingConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch spending table metadata: %w", err)
	}
	yearsVar, ok := meta.Variable("Vuosi")
	if !ok {
		return fmt.Errorf("spending table has no year variable")
	}
	funcVar, ok := meta.Variable("Tehtävä")
	if !ok {
		return fmt.Errorf("spending table has no function variable")
	}

	functions := append([]string{"SSS"}, mainFunctionCodes()...)
	sub := 0
	for _, code := range funcVar.Values {
		if len(code) == 5 && strings.HasPrefix(code, "G") {
			functions = append(functions, code)
			sub++
			if sub >= cfg.MaxSubfunctions {
				break
			}
		}
	}

	q := pxweb.NewQuery().
		Select("Sektori", cfg.Sectors...).
		Select("Taloustoimi", cfg.TransactionCode).
		Select("Tehtävä", functions...).
		Select("Vuosi", yearsVar.Values...).
		Select("Tiedot", cfg.Info...)

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch public spending: %w", err)
	}

	data := BuildPublicSpending(records, cfg)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"General government expenditure by COFOG function")

	return env.Writer.WriteDataset("public_spending", data)
}

// spendingCells indexes records by (year, sector, function) with one
// metric map per cell.
type spendingCells map[[3]string]map[string]float64

func (c spendingCells) get(year int, sector, function string) map[string]float64 {
	return c[[3]string{strconv.Itoa(year), sector, function}]
}

func indexSpending(records []tilasto.Record) (spendingCells, []int) {
	cells := make(spendingCells)
	yearSet := make(map[int]bool)

	for i := range records {
		r := &records[i]
		year := r.Code("Vuosi")
		if _, err := strconv.Atoi(year); err != nil {
			continue
		}
		key := [3]string{year, r.Code("Sektori"), r.Code("Tehtävä")}
		cell, ok := cells[key]
		if !ok {
			cell = make(map[string]float64, 3)
			cells[key] = cell
		}
		cell[r.Code("Tiedot")] = r.Value
		y, _ := strconv.Atoi(year)
		yearSet[y] = true
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	return cells, years
}

// BuildPublicSpending reshapes the expenditure records into the
// by-function, by-sector and time series views plus the summary.
func BuildPublicSpending(records []tilasto.Record, cfg SpendingConfig) *PublicSpendingData {
	cells, years := indexSpending(records)
	data := &PublicSpendingData{COFOGNames: cfg.FunctionNames}
	if len(years) == 0 {
		return data
	}
	latest := years[len(years)-1]

	for _, code := range mainFunctionCodes() {
		cell := cells.get(latest, "S13", code)
		if cell == nil {
			continue
		}

		var subs []SpendingCategory
		for subCode, subName := range cfg.SubfunctionNames {
			if !strings.HasPrefix(subCode, code) {
				continue
			}
			subCell := cells.get(latest, "S13", subCode)
			if subCell == nil || subCell["cp"] == 0 {
				continue
			}
			subs = append(subs, SpendingCategory{
				Code:          subCode,
				Name:          subName,
				AmountMillion: tilasto.Round1(subCell["cp"]),
				PctOfGDP:      tilasto.Round2(subCell["bkt_suhde"]),
				PerCapita:     math.Round(subCell["percapita"]),
			})
		}
		sort.Slice(subs, func(i, j int) bool {
			return subs[i].AmountMillion > subs[j].AmountMillion
		})

		data.ByFunction = append(data.ByFunction, SpendingCategory{
			Code:          code,
			Name:          functionName(cfg, code),
			AmountMillion: tilasto.Round1(cell["cp"]),
			PctOfGDP:      tilasto.Round2(cell["bkt_suhde"]),
			PerCapita:     math.Round(cell["percapita"]),
			Subcategories: subs,
		})
	}
	sort.Slice(data.ByFunction, func(i, j int) bool {
		return data.ByFunction[i].AmountMillion > data.ByFunction[j].AmountMillion
	})

	data.BySector = make(map[string]SectorSpending, 3)
	for key, sectorCode := range map[string]string{
		"central":         "S1311",
		"local":           "S1313",
		"social_security": "S1314",
	} {
		cell := cells.get(latest, sectorCode, "SSS")
		data.BySector[key] = SectorSpending{
			Code:          sectorCode,
			Name:          cfg.SectorNames[sectorCode],
			AmountMillion: tilasto.Round1(cell["cp"]),
			PctOfGDP:      tilasto.Round2(cell["bkt_suhde"]),
			PerCapita:     math.Round(cell["percapita"]),
		}
	}

	for _, year := range years {
		total := cells.get(year, "S13", "SSS")
		entry := SpendingYear{
			Year:           year,
			TotalMillion:   tilasto.Round1(total["cp"]),
			TotalPctGDP:    tilasto.Round2(total["bkt_suhde"]),
			TotalPerCapita: math.Round(total["percapita"]),
			Categories:     make(map[string]CategoryAmount, 10),
		}
		for _, code := range mainFunctionCodes() {
			cell := cells.get(year, "S13", code)
			entry.Categories[code] = CategoryAmount{
				AmountMillion: tilasto.Round1(cell["cp"]),
				PctOfGDP:      tilasto.Round2(cell["bkt_suhde"]),
			}
		}
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	data.Summary = buildSpendingSummary(cells, years, data.ByFunction, cfg)

	return data
}

func functionName(cfg SpendingConfig, code string) string {
	if name, ok := cfg.FunctionNames[code]; ok {
		return name
	}

	return code
}

func buildSpendingSummary(cells spendingCells, years []int, byFunction []SpendingCategory, cfg SpendingConfig) SpendingSummary {
	latest := years[len(years)-1]
	comparison := latest - 10
	found := false
	for _, y := range years {
		if y == comparison {
			found = true
			break
		}
	}
	if !found {
		comparison = years[0]
	}

	total := cells.get(latest, "S13", "SSS")
	summary := SpendingSummary{
		Year:                 latest,
		ComparisonYear:       comparison,
		TotalSpendingBillion: tilasto.Round1(total["cp"] / 1000),
		PctOfGDP:             tilasto.Round1(total["bkt_suhde"]),
		PerCapita:            math.Round(total["percapita"]),
	}

	if len(byFunction) > 0 {
		largest := byFunction[0]
		summary.LargestCategory = largest.Name
		summary.LargestCategoryBillion = tilasto.Round1(largest.AmountMillion / 1000)
		if total["cp"] > 0 {
			summary.LargestCategoryPct = tilasto.Round1(largest.AmountMillion / total["cp"] * 100)
		}
	}

	var bestCode string
	var bestGrowth float64
	for _, code := range mainFunctionCodes() {
		oldVal := cells.get(comparison, "S13", code)["cp"]
		newVal := cells.get(latest, "S13", code)["cp"]
		if oldVal <= 0 {
			continue
		}
		growth := (newVal - oldVal) / oldVal * 100
		if bestCode == "" || growth > bestGrowth {
			bestCode, bestGrowth = code, growth
		}
	}
	if bestCode != "" {
		summary.FastestGrowing = functionName(cfg, bestCode)
		summary.FastestGrowingPct = tilasto.Round1(bestGrowth)
	}

	return summary
}
