package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func workforcePopulationFixture() *PopulationData {
	return &PopulationData{
		Projection: []PopulationEntry{
			{MunicipalityCode: "KU091", Year: "2024", WorkingAge: 2000000, ElderlyDependents: 900000, YoungDependents: 500000, TotalPopulation: 3400000},
			{MunicipalityCode: "KU020", Year: "2024", WorkingAge: 1100000, ElderlyDependents: 445000, YoungDependents: 255000, TotalPopulation: 1800000},
			{MunicipalityCode: "KU091", Year: "2035", WorkingAge: 1900000, ElderlyDependents: 1100000, YoungDependents: 460000, TotalPopulation: 3460000},
			{MunicipalityCode: "KU020", Year: "2035", WorkingAge: 1000000, ElderlyDependents: 514000, YoungDependents: 240000, TotalPopulation: 1754000},
		},
	}
}

func Test_BuildWorkforceData(t *testing.T) {
	t.Parallel()

	employment := &EmploymentData{
		TimeSeries: []EmploymentYear{{
			Year:          2023,
			TotalEmployed: 2400000,
			PublicSector:  600000,
			PrivateSector: 1800000,
			Sectors: map[string]SectorEmployment{
				"Q": {Label: "Terveys- ja sosiaalipalvelut", Employed: 300000},
			},
		}},
	}

	data := BuildWorkforceData(workforcePopulationFixture(), employment, DefaultWorkforceConfig())

	// 17 curated historical years plus 2024, the interpolated 2030
	// and 2035.
	require.Len(t, data.TimeSeries, 20)

	latest := data.TimeSeries[16]
	require.Equal(t, 2023, latest.Year)
	require.False(t, latest.IsProjection)
	require.Equal(t, 2400000.0, latest.TotalEmployed)
	require.Equal(t, 75.0, latest.ParticipationRate)
	require.NotNil(t, latest.CurrentRatio)
	require.Equal(t, 0.333, *latest.CurrentRatio)

	y2024 := data.TimeSeries[17]
	require.True(t, y2024.IsProjection)
	require.Equal(t, 3100000.0, y2024.WorkingAgePopulation)
	require.Equal(t, 2325000.0, y2024.TotalEmployed)

	// The 2030 entry is interpolated between the endpoints.
	y2030 := data.TimeSeries[18]
	require.Equal(t, 2030, y2030.Year)
	require.Equal(t, 2990909.0, y2030.WorkingAgePopulation)
	require.Equal(t, 1491727.0, y2030.ElderlyPopulation)
	require.Equal(t, 2243182.0, y2030.TotalEmployed)

	y2035 := data.TimeSeries[19]
	require.Equal(t, 2175000.0, y2035.TotalEmployed)
	require.NotNil(t, y2035.Scenarios)
	require.Equal(t, 0.333, y2035.Scenarios.Static.Ratio)

	// Elderly grow 20% from the 2023 baseline, so healthcare adds
	// 60000 heads, 30% of which are drawn from the private sector.
	aging := y2035.Scenarios.AgingDriven
	require.Equal(t, 660000.0, aging.Public)
	require.Equal(t, 1782000.0, aging.Private)
	require.Equal(t, 0.37, aging.Ratio)

	efficiency := y2035.Scenarios.Efficiency
	require.Equal(t, 531831.0, efficiency.Public)
	require.Equal(t, 1868169.0, efficiency.Private)
	require.Equal(t, 0.285, efficiency.Ratio)

	summary := data.Summary
	require.NotNil(t, summary)
	require.Equal(t, "2007-2035", summary.Period)
	require.Equal(t, "2007-2023", summary.HistoricalPeriod)
	require.Equal(t, "2024-2035", summary.ProjectionPeriod)
	require.Equal(t, 75.0, summary.CurrentParticipationRate)
	require.Equal(t, 3200000.0, summary.CurrentWorkingAge)
	require.Equal(t, 2900000.0, summary.ProjectedWorkingAge)
	require.Equal(t, -9.4, summary.WorkingAgeChangePct)
	require.Equal(t, 20.0, summary.ElderlyChangePct)
	require.Equal(t, 0.37, summary.FinalScenarios.AgingDrivenRatio)
	require.Equal(t, 0.285, summary.FinalScenarios.EfficiencyRatio)
}

func Test_BuildWorkforceData_NoEmployment(t *testing.T) {
	t.Parallel()

	data := BuildWorkforceData(workforcePopulationFixture(), nil, DefaultWorkforceConfig())

	require.Len(t, data.TimeSeries, 20)
	for _, entry := range data.TimeSeries {
		require.Nil(t, entry.Scenarios)
		require.Nil(t, entry.CurrentRatio)
		require.Equal(t, 0.0, entry.TotalEmployed)
	}

	summary := data.Summary
	require.NotNil(t, summary)
	require.Equal(t, 0.0, summary.CurrentParticipationRate)
	require.Equal(t, 0.0, summary.FinalScenarios.StaticRatio)
}
