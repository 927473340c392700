package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func effRec(year, function, transaction, metric string, value float64) tilasto.Record {
	return rec(value,
		"Vuosi", year, "Sektori", "S13", "Tehtävä", function,
		"Taloustoimi", transaction, "Tiedot", metric)
}

func Test_calcEfficiency(t *testing.T) {
	t.Parallel()

	cells, _ := indexEfficiency([]tilasto.Record{
		effRec("2023", "G10", "OTES", "cp", 60000),
		effRec("2023", "G10", "D62K", "cp", 40000),
		effRec("2023", "G10", "D632K", "cp", 10000),
		effRec("2023", "G10", "D1K", "cp", 3000),
		effRec("2023", "G10", "P2K", "cp", 2000),
	})

	eff := calcEfficiency(cells, "G10", 2023)
	require.NotNil(t, eff)
	require.Equal(t, 60000.0, eff.TotalMillion)
	require.Equal(t, 50000.0, eff.BenefitsMillion)
	require.Equal(t, 40000.0, eff.CashMillion)
	require.Equal(t, 10000.0, eff.InKindMillion)
	require.Equal(t, 3000.0, eff.BureaucracyMillion)
	require.Equal(t, 2000.0, eff.OverheadMillion)
	require.Equal(t, 5000.0, eff.OtherMillion)
	require.Equal(t, 83.3, eff.EfficiencyPct)
	require.Equal(t, 5.0, eff.BureaucracyPct)
	require.Equal(t, 3.3, eff.OverheadPct)

	// No reported total means no breakdown.
	require.Nil(t, calcEfficiency(cells, "G1002", 2023))
}

func Test_calcEfficiency_OtherClamped(t *testing.T) {
	t.Parallel()

	cells, _ := indexEfficiency([]tilasto.Record{
		effRec("2023", "G10", "OTES", "cp", 100),
		effRec("2023", "G10", "D62K", "cp", 80),
		effRec("2023", "G10", "D632K", "cp", 30),
	})

	eff := calcEfficiency(cells, "G10", 2023)
	require.NotNil(t, eff)
	require.Equal(t, 0.0, eff.OtherMillion)
	require.Equal(t, 110.0, eff.EfficiencyPct)
}

func Test_BuildSpendingEfficiency(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		effRec("2023", "G10", "OTES", "cp", 60000),
		effRec("2023", "G10", "OTES", "bkt_suhde", 22.0),
		effRec("2023", "G10", "D62K", "cp", 40000),
		effRec("2023", "G10", "D632K", "cp", 10000),
		effRec("2023", "G10", "D1K", "cp", 3000),
		effRec("2023", "G10", "P2K", "cp", 2000),
		effRec("2013", "G10", "OTES", "cp", 40000),
		effRec("2013", "G10", "D62K", "cp", 30000),
		effRec("2013", "G10", "D632K", "cp", 5000),
		effRec("2013", "G10", "D1K", "cp", 2000),

		effRec("2023", "G1002", "OTES", "cp", 30000),
		effRec("2023", "G1002", "D62K", "cp", 28000),
		effRec("2023", "G1002", "D1K", "cp", 300),
		effRec("2023", "G1002", "P2K", "cp", 200),

		effRec("2023", "G1005", "OTES", "cp", 5000),
		effRec("2023", "G1005", "D62K", "cp", 3500),
		effRec("2023", "G1005", "D1K", "cp", 1000),
		effRec("2023", "G1005", "P2K", "cp", 300),

		// Below the breakdown threshold, dropped.
		effRec("2023", "G1009", "OTES", "cp", 5),
	}

	data := BuildSpendingEfficiency(records, DefaultEfficiencyConfig())

	require.Len(t, data.Subcategories, 2)
	require.Equal(t, "G1002", data.Subcategories[0].Code)
	require.Equal(t, 93.3, data.Subcategories[0].EfficiencyPct)
	require.Equal(t, "G1005", data.Subcategories[1].Code)
	require.Equal(t, 70.0, data.Subcategories[1].EfficiencyPct)
	require.Equal(t, 20.0, data.Subcategories[1].BureaucracyPct)

	require.Len(t, data.G10TimeSeries, 2)
	require.Equal(t, 2013, data.G10TimeSeries[0].Year)
	require.Equal(t, 35000.0, data.G10TimeSeries[0].BenefitsMillion)
	require.Equal(t, 2023, data.G10TimeSeries[1].Year)
	require.Equal(t, 22.0, data.G10TimeSeries[1].TotalGDPPct)

	summary := data.Summary
	require.Equal(t, 2023, summary.Year)
	require.Equal(t, 60.0, summary.TotalBillion)
	require.Equal(t, 50.0, summary.BenefitsBillion)
	require.Equal(t, 3.0, summary.BureaucracyBillion)
	require.Equal(t, 83.3, summary.EfficiencyPct)
	require.Equal(t, 22.0, summary.TotalGDPPct)

	require.NotNil(t, summary.MostEfficient)
	require.Equal(t, "G1002", summary.MostEfficient.Code)
	require.Equal(t, 30.0, summary.MostEfficient.TotalBillion)
	require.NotNil(t, summary.LeastEfficient)
	require.Equal(t, "G1005", summary.LeastEfficient.Code)
	require.NotNil(t, summary.MostBureaucratic)
	require.Equal(t, "G1005", summary.MostBureaucratic.Code)

	// The bigger branch pays out a larger share as benefits.
	require.Equal(t, 1.0, summary.SizeEfficiencyCorrelation)
}
