package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tilasto"
)

func Test_BuildCPIData(t *testing.T) {
	t.Parallel()

	records := []tilasto.Record{
		rec(100, "Vuosi", "2015", "Hyödyke", "0"),
		rec(103.5, "Vuosi", "2016", "Hyödyke", "0"),
		rec(100, "Vuosi", "2015", "Hyödyke", "011"),
		rec(108.2, "Vuosi", "2016", "Hyödyke", "011"),
	}

	data := BuildCPIData(records, DefaultCPIConfig())
	require.Len(t, data.Categories, 2)

	overall := data.Categories["0"]
	require.NotNil(t, overall)
	require.Equal(t, "Overall CPI", overall.Description)
	require.Equal(t, tilasto.Series{2015: 100, 2016: 103.5}, overall.Values)

	food := data.Categories["011"]
	require.NotNil(t, food)
	require.Equal(t, tilasto.Series{2015: 100, 2016: 108.2}, food.Values)
}
