package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func empRec(year, industry string, employed float64) tilasto.Record {
	return rec(employed, "Vuosi", year, "Toimiala", industry, "Alue", "SSS", "Sukupuoli", "SSS")
}

func Test_availableCodes(t *testing.T) {
	t.Parallel()

	got := availableCodes([]string{"SSS", "C", "Z", "J"}, []string{"J", "C", "SSS", "Q"})
	require.Equal(t, []string{"SSS", "C", "J"}, got)
}

func Test_BuildEmploymentData(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		empRec("2010", "SSS", 2400000),
		empRec("2010", "O", 100000),
		empRec("2010", "P", 150000),
		empRec("2010", "Q", 350000),
		empRec("2010", "C", 400000),
		empRec("2010", "F", 150000),
		empRec("2010", "J", 80000),
		empRec("2010", "ATA", 120000),

		// Carries both the O-Q aggregate and the individual sectors;
		// only the aggregate counts toward the public total.
		empRec("2022", "SSS", 2500000),
		empRec("2022", "OTQ", 750000),
		empRec("2022", "O", 110000),
		empRec("2022", "P", 160000),
		empRec("2022", "Q", 380000),
		empRec("2022", "C", 300000),
		empRec("2022", "J", 150000),
	}

	data := BuildEmploymentData(records)
	require.Len(t, data.TimeSeries, 2)

	y2010 := data.TimeSeries[0]
	require.Equal(t, 2010, y2010.Year)
	require.Equal(t, 2400000.0, y2010.TotalEmployed)
	require.Equal(t, 600000.0, y2010.PublicSector)
	require.Equal(t, 1800000.0, y2010.PrivateSector)
	require.Equal(t, 25.0, y2010.PublicPct)
	require.Equal(t, 75.0, y2010.PrivatePct)
	require.Equal(t, 16.67, y2010.ManufacturingPct)
	require.Equal(t, 6.25, y2010.ConstructionPct)
	require.Equal(t, 5.0, y2010.PrimaryPct)
	require.NotNil(t, y2010.PrivatePerPublic)
	require.Equal(t, 3.0, *y2010.PrivatePerPublic)

	y2022 := data.TimeSeries[1]
	require.Equal(t, 750000.0, y2022.PublicSector)
	require.Equal(t, 1750000.0, y2022.PrivateSector)
	require.Equal(t, 30.0, y2022.PublicPct)
	require.Equal(t, 12.0, y2022.ManufacturingPct)
	require.Equal(t, 6.0, y2022.ICTPct)

	summary := data.Summary
	require.NotNil(t, summary)
	require.Equal(t, "2010-2022", summary.Period)
	require.Equal(t, 100000.0, summary.EmploymentChange.Total)
	require.Equal(t, 150000.0, summary.EmploymentChange.Public)
	require.Equal(t, -100000.0, summary.EmploymentChange.Manufacturing)
	require.Equal(t, 5.0, summary.ShareChange.PublicPct)
	require.Equal(t, -4.67, summary.ShareChange.ManufacturingPct)
	require.Equal(t, 2.67, summary.ShareChange.ICTPct)
}

func Test_BuildEmploymentData_SingleYear(t *testing.T) {
	t.Parallel()

	data := BuildEmploymentData([]tilasto.Record{
		empRec("2022", "SSS", 2500000),
		empRec("2022", "O", 200000),
	})
	require.Len(t, data.TimeSeries, 1)
	require.Nil(t, data.Summary)
}
