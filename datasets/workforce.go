package datasets

import (
	"context"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"tilasto"
)

// HistoricalPopulation is one year of the national age structure.
type HistoricalPopulation struct {
	WorkingAge float64
	Elderly    float64
	Total      float64
}

// WorkforceConfig drives the national workforce scenarios built on
// top of the municipal projections and the employment structure.
// Historical carries the observed national population 2007-2023; the
// age-group layout of the source population table does not aggregate
// cleanly through the API, so the observed years ship as curated
// values.
type WorkforceConfig struct {
	// Healthcare headcount fallback as a share of the public sector,
	// used when the Q sector is missing from the employment data.
	HealthcareShare float64
	// Share of aging-driven healthcare growth drawn from the private
	// sector.
	AgingPrivateShift float64
	// Yearly public sector shrink factor in the efficiency scenario.
	EfficiencyDecay float64
	// Extra projection year interpolated between the endpoints.
	InterpolateYear int
	InterpolateFrom int
	InterpolateTo   int

	Historical map[int]HistoricalPopulation
}

func DefaultWorkforceConfig() WorkforceConfig {
	return WorkforceConfig{
		HealthcareShare:   0.5,
		AgingPrivateShift: 0.3,
		EfficiencyDecay:   0.99,
		InterpolateYear:   2030,
		InterpolateFrom:   2024,
		InterpolateTo:     2035,
		Historical: map[int]HistoricalPopulation{
			2007: {WorkingAge: 3420000, Elderly: 890000, Total: 5300000},
			2008: {WorkingAge: 3415000, Elderly: 905000, Total: 5326000},
			2009: {WorkingAge: 3410000, Elderly: 920000, Total: 5351000},
			2010: {WorkingAge: 3400000, Elderly: 943000, Total: 5375000},
			2011: {WorkingAge: 3390000, Elderly: 979000, Total: 5401000},
			2012: {WorkingAge: 3375000, Elderly: 1018000, Total: 5427000},
			2013: {WorkingAge: 3360000, Elderly: 1056000, Total: 5451000},
			2014: {WorkingAge: 3345000, Elderly: 1091000, Total: 5472000},
			2015: {WorkingAge: 3325000, Elderly: 1124000, Total: 5487000},
			2016: {WorkingAge: 3305000, Elderly: 1157000, Total: 5503000},
			2017: {WorkingAge: 3285000, Elderly: 1189000, Total: 5513000},
			2018: {WorkingAge: 3265000, Elderly: 1222000, Total: 5518000},
			2019: {WorkingAge: 3250000, Elderly: 1252000, Total: 5525000},
			2020: {WorkingAge: 3235000, Elderly: 1280000, Total: 5531000},
			2021: {WorkingAge: 3220000, Elderly: 1305000, Total: 5541000},
			2022: {WorkingAge: 3210000, Elderly: 1325000, Total: 5556000},
			2023: {WorkingAge: 3200000, Elderly: 1345000, Total: 5564000},
		},
	}
}

// NationalProjection is one projection year aggregated over every
// municipality.
type NationalProjection struct {
	WorkingAge float64
	Elderly    float64
	Young      float64
	Total      float64
}

// WorkforceScenario is the public/private employment split under one
// assumption set.
type WorkforceScenario struct {
	Public  float64 `json:"public"`
	Private float64 `json:"private"`
	Ratio   float64 `json:"ratio"`
}

// WorkforceScenarios are the three splits computed per projection
// year.
type WorkforceScenarios struct {
	Static      WorkforceScenario `json:"static"`
	AgingDriven WorkforceScenario `json:"aging_driven"`
	Efficiency  WorkforceScenario `json:"efficiency"`
}

// WorkforceYear is one year of the combined historical and projected
// workforce series.
type WorkforceYear struct {
	Year                 int     `json:"year"`
	IsProjection         bool    `json:"is_projection"`
	WorkingAgePopulation float64 `json:"working_age_population"`
	ElderlyPopulation    float64 `json:"elderly_population"`
	TotalPopulation      float64 `json:"total_population"`
	TotalEmployed        float64 `json:"total_employed"`
	PublicSector         float64 `json:"public_sector,omitempty"`
	PrivateSector        float64 `json:"private_sector,omitempty"`
	ParticipationRate    float64 `json:"participation_rate"`

	CurrentRatio *float64            `json:"current_ratio,omitempty"`
	Scenarios    *WorkforceScenarios `json:"scenarios,omitempty"`
}

// ScenarioRatios is the final projection year of each scenario.
type ScenarioRatios struct {
	StaticRatio      float64 `json:"static_ratio"`
	AgingDrivenRatio float64 `json:"aging_driven_ratio"`
	EfficiencyRatio  float64 `json:"efficiency_ratio"`
}

// WorkforceSummary compares the observed baseline with the final
// projection year.
type WorkforceSummary struct {
	Period                   string         `json:"period"`
	HistoricalPeriod         string         `json:"historical_period"`
	ProjectionPeriod         string         `json:"projection_period"`
	CurrentParticipationRate float64        `json:"current_participation_rate"`
	CurrentWorkingAge        float64        `json:"current_working_age"`
	CurrentElderly           float64        `json:"current_elderly"`
	ProjectedWorkingAge      float64        `json:"projected_working_age"`
	ProjectedElderly         float64        `json:"projected_elderly"`
	WorkingAgeChangePct      float64        `json:"working_age_change_pct"`
	ElderlyChangePct         float64        `json:"elderly_change_pct"`
	FinalScenarios           ScenarioRatios `json:"final_scenarios"`
}

// WorkforceData is the output of the workforce projection job.
type WorkforceData struct {
	Metadata   tilasto.Metadata  `json:"metadata"`
	Summary    *WorkforceSummary `json:"summary"`
	TimeSeries []WorkforceYear   `json:"time_series"`
}

// RunWorkforceProjection aggregates the municipal projections to
// national totals and combines them with the employment structure
// into participation rates and scenario splits. Missing employment
// data degrades the output instead of failing the job.
func RunWorkforceProjection(_ context.Context, env Env) error {
	cfg := DefaultWorkforceConfig()

	var population PopulationData
	if err := LoadDataset(env.DataDir, "population_projection", &population); err != nil {
		return err
	}

	var employment *EmploymentData
	var loaded EmploymentData
	if err := LoadDataset(env.DataDir, "employment_sectors", &loaded); err != nil {
		env.Logger.Warn("employment data unavailable, writing population side only",
			zap.Error(err))
	} else {
		employment = &loaded
	}

	data := BuildWorkforceData(&population, employment, cfg)
	data.Metadata = env.Writer.Stamp(Source, "derived",
		"Workforce participation and public/private scenario projections")

	return env.Writer.WriteDataset("workforce_projection", data)
}

// aggregateNational sums the municipal projection entries per year.
func aggregateNational(population *PopulationData) map[int]NationalProjection {
	national := make(map[int]NationalProjection)
	for i := range population.Projection {
		p := &population.Projection[i]
		year, err := strconv.Atoi(p.Year)
		if err != nil {
			continue
		}
		agg := national[year]
		agg.WorkingAge += p.WorkingAge
		agg.Elderly += p.ElderlyDependents
		agg.Young += p.YoungDependents
		agg.Total += p.TotalPopulation
		national[year] = agg
	}

	return national
}

// interpolateProjection fills the configured middle year linearly
// between the two endpoint years when both are present.
func interpolateProjection(national map[int]NationalProjection, cfg WorkforceConfig) {
	from, okFrom := national[cfg.InterpolateFrom]
	to, okTo := national[cfg.InterpolateTo]
	if !okFrom || !okTo {
		return
	}
	ratio := float64(cfg.InterpolateYear-cfg.InterpolateFrom) /
		float64(cfg.InterpolateTo-cfg.InterpolateFrom)

	national[cfg.InterpolateYear] = NationalProjection{
		WorkingAge: math.Round(from.WorkingAge + ratio*(to.WorkingAge-from.WorkingAge)),
		Elderly:    math.Round(from.Elderly + ratio*(to.Elderly-from.Elderly)),
		Young:      math.Round(from.Young + ratio*(to.Young-from.Young)),
		Total:      math.Round(from.Total + ratio*(to.Total-from.Total)),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func ratioOf(public, private float64) float64 {
	if private <= 0 {
		return 0
	}

	return round3(public / private)
}

// buildScenarios computes the three employment splits for each
// projection year from the latest observed employment baseline.
func buildScenarios(national map[int]NationalProjection, employment *EmploymentData, cfg WorkforceConfig) map[int]*WorkforceScenarios {
	if employment == nil || len(employment.TimeSeries) == 0 {
		return nil
	}
	base := employment.TimeSeries[len(employment.TimeSeries)-1]

	baseHealthcare := base.Sectors["Q"].Employed
	if baseHealthcare == 0 {
		baseHealthcare = base.PublicSector * cfg.HealthcareShare
	}

	// Elderly baseline from the last curated historical year.
	latestHistorical := 0
	for year := range cfg.Historical {
		if year > latestHistorical {
			latestHistorical = year
		}
	}
	baseElderly := cfg.Historical[latestHistorical].Elderly

	scenarios := make(map[int]*WorkforceScenarios, len(national))
	for year, proj := range national {
		elderlyGrowth := 0.0
		if baseElderly > 0 {
			elderlyGrowth = proj.Elderly/baseElderly - 1
		}

		healthcareGrowth := baseHealthcare * elderlyGrowth
		agingPublic := base.PublicSector + healthcareGrowth
		agingPrivate := base.PrivateSector - healthcareGrowth*cfg.AgingPrivateShift

		decay := math.Pow(cfg.EfficiencyDecay, float64(year-base.Year))
		efficiencyPublic := base.PublicSector * decay
		efficiencyPrivate := base.PrivateSector + (base.PublicSector - efficiencyPublic)

		scenarios[year] = &WorkforceScenarios{
			Static: WorkforceScenario{
				Public:  base.PublicSector,
				Private: base.PrivateSector,
				Ratio:   ratioOf(base.PublicSector, base.PrivateSector),
			},
			AgingDriven: WorkforceScenario{
				Public:  math.Round(agingPublic),
				Private: math.Round(agingPrivate),
				Ratio:   ratioOf(agingPublic, agingPrivate),
			},
			Efficiency: WorkforceScenario{
				Public:  math.Round(efficiencyPublic),
				Private: math.Round(efficiencyPrivate),
				Ratio:   ratioOf(efficiencyPublic, efficiencyPrivate),
			},
		}
	}

	return scenarios
}

// BuildWorkforceData assembles the historical and projected series
// plus the scenario summary.
func BuildWorkforceData(population *PopulationData, employment *EmploymentData, cfg WorkforceConfig) *WorkforceData {
	national := aggregateNational(population)
	interpolateProjection(national, cfg)
	scenarios := buildScenarios(national, employment, cfg)

	employmentByYear := make(map[int]*EmploymentYear)
	if employment != nil {
		for i := range employment.TimeSeries {
			e := &employment.TimeSeries[i]
			employmentByYear[e.Year] = e
		}
	}

	data := &WorkforceData{}

	historicalYears := make([]int, 0, len(cfg.Historical))
	for year := range cfg.Historical {
		historicalYears = append(historicalYears, year)
	}
	sort.Ints(historicalYears)

	latestParticipation := 0.0
	for _, year := range historicalYears {
		pop := cfg.Historical[year]
		entry := WorkforceYear{
			Year:                 year,
			WorkingAgePopulation: pop.WorkingAge,
			ElderlyPopulation:    pop.Elderly,
			TotalPopulation:      pop.Total,
		}
		if emp, ok := employmentByYear[year]; ok {
			entry.TotalEmployed = emp.TotalEmployed
			entry.PublicSector = emp.PublicSector
			entry.PrivateSector = emp.PrivateSector
			if emp.PublicSector > 0 && emp.PrivateSector > 0 {
				ratio := round3(emp.PublicSector / emp.PrivateSector)
				entry.CurrentRatio = &ratio
			}
		}
		if pop.WorkingAge > 0 {
			entry.ParticipationRate = tilasto.Round1(entry.TotalEmployed / pop.WorkingAge * 100)
		}
		if entry.ParticipationRate > 0 {
			latestParticipation = entry.ParticipationRate
		}
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	projectionYears := make([]int, 0, len(national))
	for year := range national {
		projectionYears = append(projectionYears, year)
	}
	sort.Ints(projectionYears)

	for _, year := range projectionYears {
		proj := national[year]
		entry := WorkforceYear{
			Year:                 year,
			IsProjection:         true,
			WorkingAgePopulation: proj.WorkingAge,
			ElderlyPopulation:    proj.Elderly,
			TotalPopulation:      proj.Total,
			TotalEmployed:        math.Round(proj.WorkingAge * latestParticipation / 100),
			ParticipationRate:    latestParticipation,
			Scenarios:            scenarios[year],
		}
		data.TimeSeries = append(data.TimeSeries, entry)
	}

	data.Summary = buildWorkforceSummary(data.TimeSeries, scenarios)

	return data
}

func buildWorkforceSummary(series []WorkforceYear, scenarios map[int]*WorkforceScenarios) *WorkforceSummary {
	var historical, projected []WorkforceYear
	for _, entry := range series {
		if entry.IsProjection {
			projected = append(projected, entry)
		} else {
			historical = append(historical, entry)
		}
	}
	if len(historical) == 0 || len(projected) == 0 {
		return nil
	}

	first := historical[0]
	latest := historical[len(historical)-1]
	final := projected[len(projected)-1]

	summary := &WorkforceSummary{
		Period:                   strconv.Itoa(first.Year) + "-" + strconv.Itoa(final.Year),
		HistoricalPeriod:         strconv.Itoa(first.Year) + "-" + strconv.Itoa(latest.Year),
		ProjectionPeriod:         strconv.Itoa(projected[0].Year) + "-" + strconv.Itoa(final.Year),
		CurrentParticipationRate: latest.ParticipationRate,
		CurrentWorkingAge:        latest.WorkingAgePopulation,
		CurrentElderly:           latest.ElderlyPopulation,
		ProjectedWorkingAge:      final.WorkingAgePopulation,
		ProjectedElderly:         final.ElderlyPopulation,
	}
	if latest.WorkingAgePopulation > 0 {
		summary.WorkingAgeChangePct = tilasto.Round1(
			(final.WorkingAgePopulation/latest.WorkingAgePopulation - 1) * 100)
	}
	if latest.ElderlyPopulation > 0 {
		summary.ElderlyChangePct = tilasto.Round1(
			(final.ElderlyPopulation/latest.ElderlyPopulation - 1) * 100)
	}
	if s, ok := scenarios[final.Year]; ok {
		summary.FinalScenarios = ScenarioRatios{
			StaticRatio:      s.Static.Ratio,
			AgingDrivenRatio: s.AgingDriven.Ratio,
			EfficiencyRatio:  s.Efficiency.Ratio,
		}
	}

	return summary
}
