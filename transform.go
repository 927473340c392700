package tilasto

import "strconv"

// GroupByCode buckets records by the category code of one dimension,
// preserving the decode order inside each bucket.
func GroupByCode(records []Record, dim string) map[string][]Record {
	groups := make(map[string][]Record)
	for i := range records {
		code := records[i].Code(dim)
		groups[code] = append(groups[code], records[i])
	}

	return groups
}

// SeriesByYear builds a year keyed series from records, reading the
// year from yearDim's category code. Records whose code does not parse
// as a year are dropped; on duplicate years the last record wins.
func SeriesByYear(records []Record, yearDim string) Series {
	s := make(Series, len(records))
	for i := range records {
		year, ok := ParseYear(records[i].Code(yearDim))
		if !ok {
			continue
		}
		s[year] = records[i].Value
	}

	return s
}

// PivotByYear buckets records into a per-code series map: one Series
// per category code of dim, keyed by the year parsed from yearDim.
func PivotByYear(records []Record, yearDim, dim string) map[string]Series {
	pivot := make(map[string]Series)
	for i := range records {
		year, ok := ParseYear(records[i].Code(yearDim))
		if !ok {
			continue
		}

		code := records[i].Code(dim)
		if _, ok := pivot[code]; !ok {
			pivot[code] = make(Series)
		}
		pivot[code][year] = records[i].Value
	}

	return pivot
}

// ParseYear reads a four digit year from the front of a category code,
// accepting plain years ("2016"), quarters ("2016Q4") and months
// ("2016M01"). Trailing markers for preliminary data ("2024*") are
// ignored.
func ParseYear(code string) (int, bool) {
	if len(code) < 4 {
		return 0, false
	}

	year, err := strconv.Atoi(code[:4])
	if err != nil || year <= 0 {
		return 0, false
	}

	return year, true
}

// YearOverYear returns the percentage change of each year against the
// previous observed year. The first year maps to 0; a change against a
// zero base is skipped.
func YearOverYear(s Series) Series {
	years := s.Years()
	changes := make(Series, len(years))
	for i, year := range years {
		if i == 0 {
			changes[year] = 0

			continue
		}

		prev := s[years[i-1]]
		if prev == 0 {
			continue
		}
		changes[year] = (s[year] - prev) / prev * 100
	}

	return changes
}

// Rebase scales a series so that baseYear equals 100. If the base year
// is missing or zero the series is returned unchanged.
func Rebase(s Series, baseYear int) Series {
	base, ok := s[baseYear]
	if !ok || base == 0 {
		return s
	}

	rebased := make(Series, len(s))
	for year, v := range s {
		rebased[year] = v / base * 100
	}

	return rebased
}

// TotalChangePct is the percentage change between the first and last
// observed years of the series, 0 when the base is zero or absent.
func TotalChangePct(s Series) float64 {
	_, first := s.First()
	_, last := s.Last()
	if first == 0 {
		return 0
	}

	return (last - first) / first * 100
}
