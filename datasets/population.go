package datasets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"tilasto"
	"tilasto/pxweb"
)

// PopulationConfig selects the population projection table and the
// projection years of interest.
type PopulationConfig struct {
	Table string
	Years []string
}

func DefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		Table: "StatFin/vaenn/statfin_vaenn_pxt_14wx.px",
		Years: []string{"2024", "2035", "2040", "2050"},
	}
}

// PopulationEntry is the projected age structure of one municipality
// in one projection year. Ages are banded into young dependents
// (0-19), working age (20-64) and elderly dependents (65+).
type PopulationEntry struct {
	MunicipalityCode  string  `json:"municipality_code"`
	MunicipalityName  string  `json:"municipality_name"`
	Year              string  `json:"year"`
	WorkingAge        float64 `json:"working_age_20_64"`
	YoungDependents   float64 `json:"young_dependents_0_19"`
	ElderlyDependents float64 `json:"elderly_dependents_65_plus"`
	TotalPopulation   float64 `json:"total_population"`
	TotalDependents   float64 `json:"total_dependents"`
	DependencyRatio   float64 `json:"dependency_ratio"`
}

// PopulationData is the output of the population projection job.
type PopulationData struct {
	Metadata   tilasto.Metadata  `json:"metadata"`
	Projection []PopulationEntry `json:"projection"`
}

// RunPopulation fetches single-year-of-age projections for every
// municipality and writes the banded age structure.
func RunPopulation(ctx context.Context, env Env) error {
	cfg := DefaultPopulationConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch population table metadata: %w", err)
	}

	yearsVar, ok := meta.Variable("Vuosi")
	if !ok {
		return fmt.Errorf("population table has no year variable")
	}
	available := make(map[string]bool, len(yearsVar.Values))
	for _, code := range yearsVar.Values {
		available[code] = true
	}
	var years []string
	for _, y := range cfg.Years {
		if available[y] {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		// Projection tables shift their horizon; take the earliest
		// years rather than failing the whole run.
		n := len(cfg.Years)
		if n > len(yearsVar.Values) {
			n = len(yearsVar.Values)
		}
		years = yearsVar.Values[:n]
	}

	agesVar, ok := meta.Variable("Ikä")
	if !ok {
		return fmt.Errorf("population table has no age variable")
	}
	var ages []string
	for _, code := range agesVar.Values {
		if _, err := strconv.Atoi(code); err == nil {
			ages = append(ages, code)
		}
	}

	q := pxweb.NewQuery().
		Select("Vuosi", years...).
		SelectAll("Alue").
		Select("Ikä", ages...).
		Select("Sukupuoli", "SSS")

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch population projection: %w", err)
	}

	data := BuildPopulationData(records)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Population projection by municipality and age band")

	return env.Writer.WriteDataset("population_projection", data)
}

// BuildPopulationData bands single-year ages per municipality and
// projection year and derives the dependency ratio.
func BuildPopulationData(records []tilasto.Record) *PopulationData {
	type key struct {
		area string
		year string
	}
	entries := make(map[key]*PopulationEntry)

	for i := range records {
		r := &records[i]
		area := r.Code("Alue")
		if area == "" || area == "SSS" {
			continue
		}
		age, err := strconv.Atoi(r.Code("Ikä"))
		if err != nil {
			continue
		}

		k := key{area: area, year: r.Code("Vuosi")}
		entry, ok := entries[k]
		if !ok {
			entry = &PopulationEntry{
				MunicipalityCode: area,
				MunicipalityName: r.Label("Alue"),
				Year:             k.year,
			}
			entries[k] = entry
		}

		switch {
		case age <= 19:
			entry.YoungDependents += r.Value
		case age <= 64:
			entry.WorkingAge += r.Value
		default:
			entry.ElderlyDependents += r.Value
		}
		entry.TotalPopulation += r.Value
	}

	data := &PopulationData{}
	for _, entry := range entries {
		if entry.TotalPopulation == 0 {
			continue
		}
		entry.TotalDependents = entry.YoungDependents + entry.ElderlyDependents
		entry.DependencyRatio = round4(entry.TotalDependents / math.Max(entry.WorkingAge, 1))
		data.Projection = append(data.Projection, *entry)
	}

	sort.Slice(data.Projection, func(i, j int) bool {
		a, b := data.Projection[i], data.Projection[j]
		if a.MunicipalityCode != b.MunicipalityCode {
			return a.MunicipalityCode < b.MunicipalityCode
		}

		return a.Year < b.Year
	})

	return data
}
