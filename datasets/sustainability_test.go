package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_normalizeMunicipalityCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "091", normalizeMunicipalityCode("KU091"))
	require.Equal(t, "091", normalizeMunicipalityCode("091"))
}

func Test_riskCategory(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name     string
		ponzi    float64
		expected string
	}{
		{name: "critical", ponzi: 30001, expected: "critical"},
		{name: "high", ponzi: 25000, expected: "high"},
		{name: "elevated", ponzi: 15000, expected: "elevated"},
		{name: "moderate", ponzi: 5001, expected: "moderate"},
		{name: "low", ponzi: 5000, expected: "low"},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, riskCategory(tc.ponzi))
		})
	}
}

func Test_BuildSustainabilityIndex(t *testing.T) {
	t.Parallel()

	population := &PopulationData{
		Projection: []PopulationEntry{
			{
				MunicipalityCode: "KU091", MunicipalityName: "Helsinki", Year: "2035",
				WorkingAge: 400000, YoungDependents: 100000, ElderlyDependents: 150000,
				TotalDependents: 250000, TotalPopulation: 650000,
			},
			{
				MunicipalityCode: "KU020", MunicipalityName: "Akaa", Year: "2035",
				WorkingAge: 5000, YoungDependents: 2000, ElderlyDependents: 3000,
				TotalDependents: 5000, TotalPopulation: 10000,
			},
		},
	}
	debt := &MunicipalDebtData{
		Year: "2020",
		Municipalities: []MunicipalityDebt{
			{MunicipalityCode: "091", MunicipalityName: "Helsinki", Year: "2020",
				LoanPerCapitaEUR: 7000, TotalDebtEUR: 4000000000},
			// Total debt missing, estimated from per-capita times the
			// projected population.
			{MunicipalityCode: "020", MunicipalityName: "Akaa", Year: "2020",
				LoanPerCapitaEUR: 3000},
			// No projection match, dropped.
			{MunicipalityCode: "999", MunicipalityName: "Nowhere", Year: "2020",
				LoanPerCapitaEUR: 1000, TotalDebtEUR: 1000000},
		},
	}

	cfg := SustainabilityConfig{ProjectionYears: []string{"2035"}, SimplifiedYear: "2035"}
	data := BuildSustainabilityIndex(population, debt, cfg)
	require.Len(t, data.Years, 1)

	year := data.Years["2035"]
	require.NotNil(t, year)
	require.Len(t, year.Municipalities, 2)

	// Helsinki: 4B over 400k workers, dependency 0.625, index 6250.
	top := year.Municipalities[0]
	require.Equal(t, "091", top.MunicipalityCode)
	require.Equal(t, 1, top.Rank)
	require.Equal(t, 10000.0, top.DebtPerWorkerEUR)
	require.Equal(t, 0.625, top.DependencyRatio)
	require.Equal(t, 6250.0, top.PonziIndex)
	require.Equal(t, "moderate", top.RiskCategory)

	// Akaa: total debt estimated as 3000 * 10000 = 30M, 6000 per
	// worker against dependency 1.0.
	second := year.Municipalities[1]
	require.Equal(t, "020", second.MunicipalityCode)
	require.Equal(t, 2, second.Rank)
	require.Equal(t, 30000000.0, second.TotalDebtEUR)
	require.Equal(t, 6000.0, second.PonziIndex)

	stats := year.Statistics
	require.Equal(t, 2, stats.TotalMunicipalities)
	require.Equal(t, 6000.0, stats.PonziIndex.Min)
	require.Equal(t, 6250.0, stats.PonziIndex.Max)
	require.Equal(t, 6125.0, stats.PonziIndex.Mean)
	require.Equal(t, 2, stats.RiskDistribution["moderate"])
	require.Equal(t, 0, stats.RiskDistribution["critical"])
}
