package tilasto

import (
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// Table is a dimensioned statistical dataset as returned by the API
// in JSON-STAT2 form. It is read-only after decoding the response body.
type Table struct {
	Label   string `json:"label,omitempty"`
	Source  string `json:"source,omitempty"`
	Updated string `json:"updated,omitempty"`

	// ID lists the dimensions in their declared order. The value array
	// is laid out row-major over this order, first dimension slowest.
	ID   []string `json:"id"`
	Size []int    `json:"size"`

	Dimension map[string]*Dimension `json:"dimension"`

	// Value holds one cell per combination of category selections.
	// A nil entry is a missing observation.
	Value []*float64 `json:"value"`
}

// Dimension is one axis of classification in a Table.
type Dimension struct {
	Label    string    `json:"label,omitempty"`
	Category *Category `json:"category"`
}

// Category maps the dimension's codes to positions and display labels.
// Label may be sparse; a code without a label falls back to the code.
type Category struct {
	Index map[string]int    `json:"index"`
	Label map[string]string `json:"label"`
}

// CategoryValue is one resolved category of a decoded record.
type CategoryValue struct {
	Code  string
	Label string
}

// Record is one decoded observation: the numeric cell value plus the
// resolved code and label for every dimension of the source table.
type Record struct {
	Value float64
	Dims  map[string]CategoryValue
}

// Code returns the category code of the given dimension, or "".
func (r *Record) Code(dim string) string {
	return r.Dims[dim].Code
}

// Label returns the category label of the given dimension, or "".
func (r *Record) Label(dim string) string {
	return r.Dims[dim].Label
}

// MarshalJSON writes the flat record shape consumed downstream:
// {"value": v, "<dim>_code": c, "<dim>_label": l, ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, 1+2*len(r.Dims))
	flat["value"] = r.Value
	for dim, cv := range r.Dims {
		flat[dim+"_code"] = cv.Code
		flat[dim+"_label"] = cv.Label
	}

	return json.Marshal(flat)
}

// Metadata is stamped into every written dataset file.
type Metadata struct {
	Source      string    `json:"source"`
	TableID     string    `json:"table,omitempty"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	BaseYear    int       `json:"base_year,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
	RunID       string    `json:"run_id"`
}

// Series is a numeric series keyed by year.
type Series map[int]float64

// Years returns the years of the series in ascending order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)

	return years
}

// First returns the earliest year and its value.
func (s Series) First() (int, float64) {
	years := s.Years()
	if len(years) == 0 {
		return 0, 0
	}

	return years[0], s[years[0]]
}

// Last returns the latest year and its value.
func (s Series) Last() (int, float64) {
	years := s.Years()
	if len(years) == 0 {
		return 0, 0
	}

	return years[len(years)-1], s[years[len(years)-1]]
}
