package pxweb

// Filter selects how a variable's values are picked in a table query.
type Filter string

const (
	// FilterItem picks the listed value codes.
	FilterItem Filter = "item"
	// FilterAll picks every value matching the wildcard expression.
	FilterAll Filter = "all"
	// FilterTop picks the newest N values.
	FilterTop Filter = "top"
)

// FormatJSONStat2 is the only response format the pipeline consumes.
const FormatJSONStat2 = "json-stat2"

// Selection filters one variable of a table query.
type Selection struct {
	Filter Filter   `json:"filter"`
	Values []string `json:"values"`
}

// Variable pairs a dimension code with its selection.
type Variable struct {
	Code      string    `json:"code"`
	Selection Selection `json:"selection"`
}

// Query is the request body of a PxWeb table data call.
type Query struct {
	Query    []Variable `json:"query"`
	Response struct {
		Format string `json:"format"`
	} `json:"response"`
}

// NewQuery returns an empty query requesting JSON-STAT2.
func NewQuery() *Query {
	q := &Query{Query: make([]Variable, 0, 4)}
	q.Response.Format = FormatJSONStat2

	return q
}

// Select adds an item selection for the given variable code.
func (q *Query) Select(code string, values ...string) *Query {
	q.Query = append(q.Query, Variable{
		Code:      code,
		Selection: Selection{Filter: FilterItem, Values: values},
	})

	return q
}

// SelectAll adds a wildcard selection covering every value of the
// variable.
func (q *Query) SelectAll(code string) *Query {
	q.Query = append(q.Query, Variable{
		Code:      code,
		Selection: Selection{Filter: FilterAll, Values: []string{"*"}},
	})

	return q
}
