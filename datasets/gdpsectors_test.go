package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func gdpRec(year, industry string, value float64) tilasto.Record {
	return rec(value, "Vuosi", year, "Toimiala", industry, "Sektori", "S1", "Taloustoimi", "B1GPH")
}

func Test_BuildGDPSectorData(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		gdpRec("1995", "SSS", 100000),
		gdpRec("1995", "OTQ", 18000),
		gdpRec("1995", "C", 25000),
		gdpRec("1995", "J", 4000),

		// No O-Q aggregate; the individual sectors sum instead.
		gdpRec("2023", "SSS", 270000),
		gdpRec("2023", "O", 15000),
		gdpRec("2023", "P", 18000),
		gdpRec("2023", "Q", 29000),
		gdpRec("2023", "C", 40000),
	}

	data := BuildGDPSectorData(records)
	require.Len(t, data.TimeSeries, 2)

	y1995 := data.TimeSeries[0]
	require.Equal(t, 1995, y1995.Year)
	require.Equal(t, 100000.0, y1995.TotalGDP)
	require.Equal(t, 18000.0, y1995.PublicSectorGDP)
	require.Equal(t, 82000.0, y1995.PrivateSectorGDP)
	require.Equal(t, 18.0, y1995.PublicSharePct)
	require.Equal(t, 82.0, y1995.PrivateSharePct)
	require.Equal(t, 25.0, y1995.ManufacturingSharePct)
	require.Equal(t, 4.0, y1995.ICTSharePct)

	y2023 := data.TimeSeries[1]
	require.Equal(t, 62000.0, y2023.PublicSectorGDP)
	require.Equal(t, 208000.0, y2023.PrivateSectorGDP)
	require.Equal(t, 22.96, y2023.PublicSharePct)
	require.Equal(t, 40000.0, y2023.Sectors["C"].ValueMillion)
}
