package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func spRec(year, sector, function, metric string, value float64) tilasto.Record {
	return rec(value, "Vuosi", year, "Sektori", sector, "Tehtävä", function, "Tiedot", metric)
}

func Test_mainFunctionCodes(t *testing.T) {
	t.Parallel()

	codes := mainFunctionCodes()
	require.Len(t, codes, 10)
	require.Equal(t, "G01", codes[0])
	require.Equal(t, "G10", codes[9])
}

func Test_BuildPublicSpending(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		spRec("2023", "S13", "SSS", "cp", 140000),
		spRec("2023", "S13", "SSS", "bkt_suhde", 52.5),
		spRec("2023", "S13", "SSS", "percapita", 25000.4),
		spRec("2023", "S13", "G10", "cp", 60000),
		spRec("2023", "S13", "G10", "bkt_suhde", 22.0),
		spRec("2023", "S13", "G10", "percapita", 10800),
		spRec("2023", "S13", "G07", "cp", 30000),
		spRec("2023", "S13", "G07", "bkt_suhde", 11.0),
		spRec("2023", "S13", "G1002", "cp", 40000),
		spRec("2023", "S13", "G1002", "bkt_suhde", 15.0),
		spRec("2023", "S1311", "SSS", "cp", 70000),
		spRec("2023", "S1311", "SSS", "bkt_suhde", 26.0),
		spRec("2023", "S1311", "SSS", "percapita", 12500),
		spRec("2023", "S1313", "SSS", "cp", 50000),
		spRec("2023", "S1314", "SSS", "cp", 20000),
		spRec("2013", "S13", "SSS", "cp", 110000),
		spRec("2013", "S13", "G10", "cp", 50000),
		spRec("2013", "S13", "G07", "cp", 20000),
	}

	data := BuildPublicSpending(records, DefaultSpendingConfig())

	require.Len(t, data.ByFunction, 2)
	require.Equal(t, "G10", data.ByFunction[0].Code)
	require.Equal(t, "Social protection", data.ByFunction[0].Name)
	require.Equal(t, 60000.0, data.ByFunction[0].AmountMillion)
	require.Len(t, data.ByFunction[0].Subcategories, 1)
	require.Equal(t, "Old age", data.ByFunction[0].Subcategories[0].Name)
	require.Equal(t, 40000.0, data.ByFunction[0].Subcategories[0].AmountMillion)
	require.Equal(t, "G07", data.ByFunction[1].Code)

	central := data.BySector["central"]
	require.Equal(t, "S1311", central.Code)
	require.Equal(t, "Central government", central.Name)
	require.Equal(t, 70000.0, central.AmountMillion)
	require.Equal(t, 12500.0, central.PerCapita)
	require.Equal(t, 50000.0, data.BySector["local"].AmountMillion)
	require.Equal(t, 20000.0, data.BySector["social_security"].AmountMillion)

	require.Len(t, data.TimeSeries, 2)
	require.Equal(t, 2013, data.TimeSeries[0].Year)
	require.Equal(t, 110000.0, data.TimeSeries[0].TotalMillion)
	require.Equal(t, 50000.0, data.TimeSeries[0].Categories["G10"].AmountMillion)
	require.Equal(t, 0.0, data.TimeSeries[0].Categories["G01"].AmountMillion)
	require.Equal(t, 2023, data.TimeSeries[1].Year)

	summary := data.Summary
	require.Equal(t, 2023, summary.Year)
	require.Equal(t, 2013, summary.ComparisonYear)
	require.Equal(t, 140.0, summary.TotalSpendingBillion)
	require.Equal(t, 52.5, summary.PctOfGDP)
	require.Equal(t, 25000.0, summary.PerCapita)
	require.Equal(t, "Social protection", summary.LargestCategory)
	require.Equal(t, 60.0, summary.LargestCategoryBillion)
	require.Equal(t, 42.9, summary.LargestCategoryPct)
	// Health grew 50%, social protection 20%.
	require.Equal(t, "Health", summary.FastestGrowing)
	require.Equal(t, 50.0, summary.FastestGrowingPct)
}

func Test_BuildPublicSpending_NoRecords(t *testing.T) {
	t.Parallel()

	data := BuildPublicSpending(nil, DefaultSpendingConfig())
	require.Empty(t, data.ByFunction)
	require.Empty(t, data.TimeSeries)
}
