package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func Test_BuildAssetData(t *testing.T) {
	t.Parallel()

	cfg := DefaultAssetConfig()
	cfg.DomesticStocks = tilasto.Series{2015: 2000, 2016: 2200}
	cfg.SP500 = tilasto.Series{2015: 1000, 2016: 1100}

	housing := []tilasto.Record{
		rec(100, "Vuosi", "2015"),
		rec(102, "Vuosi", "2016"),
	}
	gdp := []tilasto.Record{
		rec(100, "Vuosi", "2015"),
		rec(101.5, "Vuosi", "2016"),
	}
	wages := []tilasto.Record{
		rec(100, "Vuosi", "2015", "Tiedot", "ati_2015_100"),
		rec(101, "Vuosi", "2016", "Tiedot", "ati_2015_100"),
		rec(100, "Vuosi", "2015", "Tiedot", "real_2015_100"),
		rec(99.4, "Vuosi", "2016", "Tiedot", "real_2015_100"),
	}

	data := BuildAssetData(housing, gdp, wages, cfg)

	require.Equal(t, tilasto.Series{2015: 100, 2016: 102}, data.Housing.Values)
	require.Equal(t, tilasto.Series{2015: 100, 2016: 101.5}, data.GDP.Values)
	require.Equal(t, tilasto.Series{2015: 100, 2016: 101}, data.WageNominal.Values)
	require.Equal(t, tilasto.Series{2015: 100, 2016: 99.4}, data.WageReal.Values)

	// Stock levels are rebased to 100 at the base year.
	require.Equal(t, 100.0, data.Domestic.Values[2015])
	require.InDelta(t, 110.0, data.Domestic.Values[2016], 1e-9)
	require.InDelta(t, 110.0, data.SP500.Values[2016], 1e-9)
}
