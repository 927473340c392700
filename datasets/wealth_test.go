package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func Test_BuildWealthData(t *testing.T) {
	t.Parallel()

	cfg := DefaultWealthConfig()
	records := []tilasto.Record{
		rec(100000, "Vuosi", "2016", "Tulokymmenys", "5", "Varallisuuslaji", "nettoae_DN3001", "Tiedot", cfg.MedianCode),
		rec(120000, "Vuosi", "2023", "Tulokymmenys", "5", "Varallisuuslaji", "nettoae_DN3001", "Tiedot", cfg.MedianCode),
		rec(40000, "Vuosi", "2023", "Tulokymmenys", "5", "Varallisuuslaji", "kturaha", "Tiedot", cfg.MeanCode),
		rec(60000, "Vuosi", "2023", "Tulokymmenys", "5", "Varallisuuslaji", "luototy", "Tiedot", cfg.MeanCode),
	}

	data := BuildWealthData(records, cfg)
	require.Len(t, data.TimeSeries, 2)

	last := data.TimeSeries[1]
	require.Equal(t, 2023, last.Year)

	decile := last.Deciles["5"]
	require.Equal(t, 120000.0, decile.Median["nettoae_DN3001"])

	// Total debt over disposable income, as a percentage.
	require.NotNil(t, decile.DebtToIncome)
	require.Equal(t, 150.0, *decile.DebtToIncome)

	// Net wealth against the 2016 survey wave.
	require.NotNil(t, decile.WealthIndex)
	require.Equal(t, 120.0, *decile.WealthIndex)

	base := data.TimeSeries[0].Deciles["5"]
	require.NotNil(t, base.WealthIndex)
	require.Equal(t, 100.0, *base.WealthIndex)
	require.Nil(t, base.DebtToIncome)
}
