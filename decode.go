package tilasto

import (
	"fmt"
	"strconv"
)

// MalformedTableError reports a table whose declared shape does not
// match its payload. It is fatal for the decode call; no records are
// emitted before it is returned.
type MalformedTableError struct {
	Reason string
}

func (e *MalformedTableError) Error() string {
	return "malformed table: " + e.Reason
}

// dimAxis is the per-dimension lookup state prepared before the
// decomposition loop: reverse index (position -> code) and label map.
type dimAxis struct {
	id      string
	size    int
	stride  int
	reverse []string
	labels  map[string]string
}

// Decode expands a flattened JSON-STAT2 table into one Record per
// non-null cell, in ascending flat-index order.
//
// The table's declared dimension order is authoritative: stride[j] is
// the product of the sizes of all dimensions after j, so the first
// listed dimension varies slowest. Null cells are skipped. A code with
// no label falls back to the code itself; a computed position with no
// code in the reverse index falls back to the position rendered as a
// string, so sparse upstream metadata never drops a non-null value.
func Decode(t *Table) ([]Record, error) {
	if len(t.ID) != len(t.Size) {
		return nil, &MalformedTableError{
			Reason: fmt.Sprintf("%d dimensions declared but %d sizes", len(t.ID), len(t.Size)),
		}
	}

	axes := make([]dimAxis, len(t.ID))
	cells := 1
	for j, id := range t.ID {
		dim, ok := t.Dimension[id]
		if !ok || dim.Category == nil {
			return nil, &MalformedTableError{
				Reason: fmt.Sprintf("dimension %q has no category metadata", id),
			}
		}

		size := t.Size[j]
		reverse := make([]string, size)
		for code, pos := range dim.Category.Index {
			if pos >= 0 && pos < size {
				reverse[pos] = code
			}
		}

		axes[j] = dimAxis{
			id:      id,
			size:    size,
			reverse: reverse,
			labels:  dim.Category.Label,
		}
		cells *= size
	}

	if len(t.Value) != cells {
		return nil, &MalformedTableError{
			Reason: fmt.Sprintf("value array has %d cells, dimension sizes give %d", len(t.Value), cells),
		}
	}

	stride := 1
	for j := len(axes) - 1; j >= 0; j-- {
		axes[j].stride = stride
		stride *= axes[j].size
	}

	records := make([]Record, 0, len(t.Value))
	for i, v := range t.Value {
		if v == nil {
			continue
		}

		dims := make(map[string]CategoryValue, len(axes))
		remaining := i
		for j := range axes {
			pos := remaining / axes[j].stride
			remaining %= axes[j].stride

			code := ""
			if pos < len(axes[j].reverse) {
				code = axes[j].reverse[pos]
			}
			if code == "" {
				code = strconv.Itoa(pos)
			}

			label, ok := axes[j].labels[code]
			if !ok {
				label = code
			}

			dims[axes[j].id] = CategoryValue{Code: code, Label: label}
		}

		records = append(records, Record{Value: *v, Dims: dims})
	}

	return records, nil
}
