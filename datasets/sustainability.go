package datasets

import (
	"context"
	"math"
	"sort"
	"strings"

	"tilasto"
)

// SustainabilityConfig pairs current municipal debt with projected
// age structures. The index is computed against several projection
// years; SimplifiedYear selects the one written out flat for the
// front-end map.
type SustainabilityConfig struct {
	ProjectionYears []string
	SimplifiedYear  string
}

func DefaultSustainabilityConfig() SustainabilityConfig {
	return SustainabilityConfig{
		ProjectionYears: []string{"2024", "2035", "2040"},
		SimplifiedYear:  "2035",
	}
}

// MunicipalityIndex is the sustainability position of one
// municipality against one projection year.
type MunicipalityIndex struct {
	MunicipalityCode string `json:"municipality_code"`
	MunicipalityName string `json:"municipality_name"`
	ProjectionYear   string `json:"projection_year"`
	DebtYear         string `json:"debt_year"`

	TotalDebtEUR      float64 `json:"total_debt_eur"`
	WorkingAge        float64 `json:"working_age_population"`
	TotalDependents   float64 `json:"total_dependents"`
	YoungDependents   float64 `json:"young_dependents_0_19"`
	ElderlyDependents float64 `json:"elderly_dependents_65_plus"`
	TotalPopulation   float64 `json:"total_population"`

	DebtPerWorkerEUR float64 `json:"debt_per_worker_eur"`
	DependencyRatio  float64 `json:"dependency_ratio"`
	ElderlyRatio     float64 `json:"elderly_ratio"`
	YouthRatio       float64 `json:"youth_ratio"`

	LoanPerCapitaEUR        float64 `json:"loan_per_capita_eur"`
	RelativeIndebtednessPct float64 `json:"relative_indebtedness_pct"`
	EquityRatioPct          float64 `json:"equity_ratio_pct"`

	PonziIndex   float64 `json:"ponzi_index"`
	RiskCategory string  `json:"risk_category"`
	Rank         int     `json:"rank"`
}

// MetricStats summarises the distribution of one metric across
// municipalities.
type MetricStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Stdev  float64 `json:"stdev,omitempty"`
}

// YearStatistics describes one projection year's distribution.
type YearStatistics struct {
	TotalMunicipalities int            `json:"total_municipalities"`
	PonziIndex          MetricStats    `json:"ponzi_index"`
	DebtPerWorker       MetricStats    `json:"debt_per_worker"`
	DependencyRatio     MetricStats    `json:"dependency_ratio"`
	RiskDistribution    map[string]int `json:"risk_distribution"`
}

// YearIndex is the full ranking for one projection year.
type YearIndex struct {
	Municipalities []MunicipalityIndex `json:"municipalities"`
	Statistics     YearStatistics      `json:"statistics"`
}

// SustainabilityData is the output of the sustainability index job.
type SustainabilityData struct {
	Metadata tilasto.Metadata      `json:"metadata"`
	Years    map[string]*YearIndex `json:"years"`
}

// RunSustainabilityIndex combines the municipal debt and population
// projection datasets into a per-municipality sustainability ranking.
// It requires both upstream jobs to have written their outputs.
func RunSustainabilityIndex(ctx context.Context, env Env) error {
	cfg := DefaultSustainabilityConfig()

	var population PopulationData
	if err := LoadDataset(env.DataDir, "population_projection", &population); err != nil {
		return err
	}
	var debt MunicipalDebtData
	if err := LoadDataset(env.DataDir, "municipal_debt", &debt); err != nil {
		return err
	}

	data := BuildSustainabilityIndex(&population, &debt, cfg)
	data.Metadata = env.Writer.Stamp(Source, "derived",
		"Municipal debt sustainability index across projection years")

	if err := env.Writer.WriteDataset("ponzi_index", data); err != nil {
		return err
	}

	// Flat ranking for the headline year, kept separate so the
	// front-end map does not load every projection year.
	if year, ok := data.Years[cfg.SimplifiedYear]; ok {
		if err := env.Writer.WriteDataset("ponzi_index_"+cfg.SimplifiedYear, year.Municipalities); err != nil {
			return err
		}
	}

	return nil
}

// normalizeMunicipalityCode strips the region prefix so codes from
// the classification-keyed projection table match the plain codes of
// the municipal finance table.
func normalizeMunicipalityCode(code string) string {
	return strings.TrimPrefix(code, "KU")
}

// BuildSustainabilityIndex computes the index for every municipality
// present in both datasets, per projection year.
func BuildSustainabilityIndex(population *PopulationData, debt *MunicipalDebtData, cfg SustainabilityConfig) *SustainabilityData {
	type popKey struct {
		code string
		year string
	}
	popByMuni := make(map[popKey]*PopulationEntry)
	for i := range population.Projection {
		p := &population.Projection[i]
		popByMuni[popKey{normalizeMunicipalityCode(p.MunicipalityCode), p.Year}] = p
	}

	data := &SustainabilityData{Years: make(map[string]*YearIndex, len(cfg.ProjectionYears))}
	for _, year := range cfg.ProjectionYears {
		var indexed []MunicipalityIndex
		for i := range debt.Municipalities {
			d := &debt.Municipalities[i]
			code := normalizeMunicipalityCode(d.MunicipalityCode)
			pop, ok := popByMuni[popKey{code, year}]
			if !ok || pop.WorkingAge <= 0 {
				continue
			}

			totalDebt := d.TotalDebtEUR
			if totalDebt == 0 && d.LoanPerCapitaEUR > 0 {
				totalDebt = d.LoanPerCapitaEUR * pop.TotalPopulation
			}

			debtPerWorker := totalDebt / pop.WorkingAge
			dependencyRatio := pop.TotalDependents / pop.WorkingAge
			ponzi := debtPerWorker * dependencyRatio

			name := d.MunicipalityName
			if name == "" {
				name = pop.MunicipalityName
			}

			indexed = append(indexed, MunicipalityIndex{
				MunicipalityCode:        code,
				MunicipalityName:        name,
				ProjectionYear:          year,
				DebtYear:                d.Year,
				TotalDebtEUR:            totalDebt,
				WorkingAge:              pop.WorkingAge,
				TotalDependents:         pop.TotalDependents,
				YoungDependents:         pop.YoungDependents,
				ElderlyDependents:       pop.ElderlyDependents,
				TotalPopulation:         pop.TotalPopulation,
				DebtPerWorkerEUR:        tilasto.Round2(debtPerWorker),
				DependencyRatio:         round4(dependencyRatio),
				ElderlyRatio:            round4(pop.ElderlyDependents / pop.WorkingAge),
				YouthRatio:              round4(pop.YoungDependents / pop.WorkingAge),
				LoanPerCapitaEUR:        d.LoanPerCapitaEUR,
				RelativeIndebtednessPct: d.RelativeIndebtednessPct,
				EquityRatioPct:          d.EquityRatioPct,
				PonziIndex:              tilasto.Round2(ponzi),
				RiskCategory:            riskCategory(ponzi),
			})
		}
		if len(indexed) == 0 {
			continue
		}

		sort.Slice(indexed, func(i, j int) bool {
			return indexed[i].PonziIndex > indexed[j].PonziIndex
		})
		for i := range indexed {
			indexed[i].Rank = i + 1
		}

		data.Years[year] = &YearIndex{
			Municipalities: indexed,
			Statistics:     buildYearStatistics(indexed),
		}
	}

	return data
}

// riskCategory buckets the index. Thresholds follow the observed
// distribution across municipalities.
func riskCategory(ponzi float64) string {
	switch {
	case ponzi > 30000:
		return "critical"
	case ponzi > 20000:
		return "high"
	case ponzi > 10000:
		return "elevated"
	case ponzi > 5000:
		return "moderate"
	default:
		return "low"
	}
}

func buildYearStatistics(indexed []MunicipalityIndex) YearStatistics {
	ponzi := make([]float64, 0, len(indexed))
	debtPerWorker := make([]float64, 0, len(indexed))
	depRatios := make([]float64, 0, len(indexed))
	distribution := map[string]int{
		"critical": 0, "high": 0, "elevated": 0, "moderate": 0, "low": 0,
	}
	for i := range indexed {
		ponzi = append(ponzi, indexed[i].PonziIndex)
		debtPerWorker = append(debtPerWorker, indexed[i].DebtPerWorkerEUR)
		depRatios = append(depRatios, indexed[i].DependencyRatio)
		distribution[indexed[i].RiskCategory]++
	}

	return YearStatistics{
		TotalMunicipalities: len(indexed),
		PonziIndex: MetricStats{
			Min:    tilasto.Round2(minOf(ponzi)),
			Max:    tilasto.Round2(maxOf(ponzi)),
			Mean:   tilasto.Round2(tilasto.Mean(ponzi)),
			Median: tilasto.Round2(tilasto.Median(ponzi)),
			Stdev:  tilasto.Round2(tilasto.Stdev(ponzi)),
		},
		DebtPerWorker: MetricStats{
			Min:    tilasto.Round2(minOf(debtPerWorker)),
			Max:    tilasto.Round2(maxOf(debtPerWorker)),
			Mean:   tilasto.Round2(tilasto.Mean(debtPerWorker)),
			Median: tilasto.Round2(tilasto.Median(debtPerWorker)),
		},
		DependencyRatio: MetricStats{
			Min:    round4(minOf(depRatios)),
			Max:    round4(maxOf(depRatios)),
			Mean:   round4(tilasto.Mean(depRatios)),
			Median: round4(tilasto.Median(depRatios)),
		},
		RiskDistribution: distribution,
	}
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}

	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}

	return m
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
