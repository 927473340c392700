package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func subRec(year, function, transaction string, value float64) tilasto.Record {
	return rec(value,
		"Vuosi", year, "Sektori", "S13", "Tehtävä", function,
		"Taloustoimi", transaction, "Tiedot", "cp")
}

func Test_BuildPublicSubsidies(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		subRec("2015", "SSS", "D3K", 2700),
		subRec("2015", "G04", "D3K", 1500),
		subRec("2015", "G0402", "D3K", 600),
		subRec("2015", "G06", "D3K", 900),
		subRec("2015", "SSS", "D62K", 40000),
		subRec("2015", "G10", "D62K", 38000),
		subRec("2015", "SSS", "D632K", 10000),
		subRec("2015", "G07", "D632K", 4000),
		subRec("2015", "G10", "D632K", 5000),
		subRec("2015", "G09", "D632K", 800),

		// Preliminary year, asterisk in the code.
		subRec("2023*", "SSS", "D3K", 3000),
		subRec("2023*", "G04", "D3K", 1600),
		subRec("2023*", "G06", "D3K", 1000),
		subRec("2023*", "SSS", "D62K", 50000),
		subRec("2023*", "SSS", "D632K", 14000),
	}

	data := BuildPublicSubsidies(records, DefaultSubsidiesConfig())
	require.Len(t, data.TimeSeries, 2)

	y2015 := data.TimeSeries[0]
	require.Equal(t, 2015, y2015.Year)
	require.Equal(t, 2700.0, y2015.SubsidiesTotal)
	require.Equal(t, 1500.0, y2015.SubsidiesEconomic)
	require.Equal(t, 600.0, y2015.SubsidiesAgriculture)
	require.Equal(t, 300.0, y2015.SubsidiesOther)
	require.Equal(t, 38000.0, y2015.BenefitsSocialProtection)
	require.Equal(t, 4000.0, y2015.PurchasedHealth)
	require.Equal(t, 12700.0, y2015.DirectToPrivate)
	require.Equal(t, 52700.0, y2015.TotalPublicFunding)

	y2023 := data.TimeSeries[1]
	require.Equal(t, 2023, y2023.Year)
	require.Equal(t, 400.0, y2023.SubsidiesOther)
	require.Equal(t, 17000.0, y2023.DirectToPrivate)
	require.Equal(t, 67000.0, y2023.TotalPublicFunding)

	summary := data.Summary
	require.NotNil(t, summary)
	require.Equal(t, "2015-2023", summary.Period)
	require.Equal(t, 67.0, summary.CurrentTotalBillion)
	require.Equal(t, 23.9, summary.TotalPctOfGDP)
	require.Equal(t, 3.0, summary.CurrentSubsidiesBillion)
	require.Equal(t, 50.0, summary.CurrentBenefitsBillion)
	require.Equal(t, 14.0, summary.CurrentPurchasedBillion)
	require.Equal(t, 17.0, summary.DirectToPrivateBillion)
	require.Equal(t, 6.1, summary.DirectPctOfGDP)
	require.Equal(t, 17.9, summary.BenefitsPctOfGDP)
	require.Equal(t, 27.1, summary.GrowthSinceStartPct)
	require.Contains(t, summary.KeyInsight, "67.0B EUR")
}

func Test_BuildPublicSubsidies_OtherClamped(t *testing.T) {
	t.Parallel()

	// Rounding in the source can push the named branches past the
	// total; the remainder never goes negative.
	data := BuildPublicSubsidies([]tilasto.Record{
		subRec("2020", "SSS", "D3K", 100),
		subRec("2020", "G04", "D3K", 80),
		subRec("2020", "G06", "D3K", 30),
	}, DefaultSubsidiesConfig())

	require.Len(t, data.TimeSeries, 1)
	require.Equal(t, 0.0, data.TimeSeries[0].SubsidiesOther)
}
