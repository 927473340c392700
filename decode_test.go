package tilasto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fv(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}

	return out
}

func yearGoodsTable() *Table {
	return &Table{
		Label: "test table",
		ID:    []string{"Vuosi", "Hyödyke"},
		Size:  []int{2, 3},
		Dimension: map[string]*Dimension{
			"Vuosi": {
				Label: "Year",
				Category: &Category{
					Index: map[string]int{"2015": 0, "2016": 1},
					Label: map[string]string{"2015": "2015", "2016": "2016"},
				},
			},
			"Hyödyke": {
				Label: "Commodity",
				Category: &Category{
					Index: map[string]int{"A": 0, "B": 1, "C": 2},
					Label: map[string]string{"A": "Apples", "B": "Bread", "C": "Coffee"},
				},
			},
		},
		Value: fv(10, 11, 12, 20, 21, 22),
	}
}

func Test_Decode(t *testing.T) {
	t.Parallel()

	records, err := Decode(yearGoodsTable())
	require.NoError(t, err)
	require.Len(t, records, 6)

	// First dimension varies slowest: cell 4 is year index 1,
	// commodity index 1.
	r := records[4]
	require.Equal(t, 21.0, r.Value)
	require.Equal(t, "2016", r.Code("Vuosi"))
	require.Equal(t, "B", r.Code("Hyödyke"))
	require.Equal(t, "Bread", r.Label("Hyödyke"))

	// Cells come out in ascending flat-index order.
	values := make([]float64, 0, len(records))
	for i := range records {
		values = append(values, records[i].Value)
	}
	require.Equal(t, []float64{10, 11, 12, 20, 21, 22}, values)
}

func Test_Decode_NullCells(t *testing.T) {
	t.Parallel()

	table := yearGoodsTable()
	table.Value[1] = nil
	table.Value[5] = nil

	records, err := Decode(table)
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Skipped cells do not shift the coordinates of later cells.
	last := records[len(records)-1]
	require.Equal(t, 21.0, last.Value)
	require.Equal(t, "2016", last.Code("Vuosi"))
	require.Equal(t, "B", last.Code("Hyödyke"))
}

func Test_Decode_DimensionOrder(t *testing.T) {
	t.Parallel()

	table := yearGoodsTable()
	table.ID = []string{"Hyödyke", "Vuosi"}
	table.Size = []int{3, 2}

	records, err := Decode(table)
	require.NoError(t, err)
	require.Len(t, records, 6)

	// The same flat index now decomposes against the swapped order:
	// cell 4 is commodity index 2, year index 0.
	r := records[4]
	require.Equal(t, "C", r.Code("Hyödyke"))
	require.Equal(t, "2015", r.Code("Vuosi"))
}

func Test_Decode_OrderEquivalence(t *testing.T) {
	t.Parallel()

	// The same observations published with the dimensions declared in
	// the opposite order: the value array is laid out commodity-slowest
	// instead of year-slowest.
	swapped := yearGoodsTable()
	swapped.ID = []string{"Hyödyke", "Vuosi"}
	swapped.Size = []int{3, 2}
	swapped.Value = fv(10, 20, 11, 21, 12, 22)

	byCodes := func(records []Record) map[string]float64 {
		out := make(map[string]float64, len(records))
		for i := range records {
			r := &records[i]
			out[r.Code("Vuosi")+"|"+r.Code("Hyödyke")] = r.Value
		}

		return out
	}

	original, err := Decode(yearGoodsTable())
	require.NoError(t, err)
	reordered, err := Decode(swapped)
	require.NoError(t, err)

	require.Equal(t, byCodes(original), byCodes(reordered))
	require.Equal(t, 22.0, byCodes(reordered)["2016|C"])
}

func Test_Decode_Fallbacks(t *testing.T) {
	t.Parallel()

	table := &Table{
		ID:   []string{"Alue"},
		Size: []int{3},
		Dimension: map[string]*Dimension{
			"Alue": {
				Category: &Category{
					// Position 2 has no code, code "091" has no label.
					Index: map[string]int{"020": 0, "091": 1},
					Label: map[string]string{"020": "Akaa"},
				},
			},
		},
		Value: fv(1, 2, 3),
	}

	records, err := Decode(table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "Akaa", records[0].Label("Alue"))

	// Missing label falls back to the code.
	require.Equal(t, "091", records[1].Code("Alue"))
	require.Equal(t, "091", records[1].Label("Alue"))

	// Missing code falls back to the position as a string.
	require.Equal(t, "2", records[2].Code("Alue"))
	require.Equal(t, "2", records[2].Label("Alue"))
}

func Test_Decode_Malformed(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		mutate func(*Table)
	}{
		{
			name: "value count does not match sizes",
			mutate: func(table *Table) {
				table.Value = table.Value[:5]
			},
		},
		{
			name: "size count does not match dimensions",
			mutate: func(table *Table) {
				table.Size = []int{2}
			},
		},
		{
			name: "dimension without category",
			mutate: func(table *Table) {
				table.Dimension["Vuosi"] = &Dimension{Label: "Year"}
			},
		},
		{
			name: "missing dimension",
			mutate: func(table *Table) {
				delete(table.Dimension, "Hyödyke")
			},
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table := yearGoodsTable()
			tc.mutate(table)

			records, err := Decode(table)
			require.Nil(t, records)

			var malformed *MalformedTableError
			require.ErrorAs(t, err, &malformed)
		})
	}
}

func Test_Record_MarshalJSON(t *testing.T) {
	t.Parallel()

	records, err := Decode(yearGoodsTable())
	require.NoError(t, err)

	body, err := records[4].MarshalJSON()
	require.NoError(t, err)

	require.JSONEq(t, `{
		"value": 21,
		"Vuosi_code": "2016",
		"Vuosi_label": "2016",
		"Hyödyke_code": "B",
		"Hyödyke_label": "Bread"
	}`, string(body))
}
