package datasets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tilasto"
	"tilasto/pxweb"
)

// EmploymentConfig selects the employed-by-industry table (TOL 2008).
// Industries is a candidate list of main aggregates; the run keeps
// only the codes the table actually carries.
type EmploymentConfig struct {
	Table      string
	Industries []string
}

func DefaultEmploymentConfig() EmploymentConfig {
	return EmploymentConfig{
		Table: "StatFin/tyokay/statfin_tyokay_pxt_115i.px",
		Industries: []string{
			"SSS", // total
			"ATA", // primary
			"BTF", // secondary
			"C",   // manufacturing
			"F",   // construction
			"J",   // ICT
			"K",   // finance
			"L",   // real estate
			"O",   // public administration
			"P",   // education
			"Q",   // health and social work
		},
	}
}

// SectorEmployment is one industry's headcount with its label.
type SectorEmployment struct {
	Label    string  `json:"label"`
	Employed float64 `json:"employed"`
}

// EmploymentYear is the employment structure of one year. Public
// covers O, P and Q; private is the remainder of the total.
type EmploymentYear struct {
	Year          int     `json:"year"`
	TotalEmployed float64 `json:"total_employed"`
	PublicSector  float64 `json:"public_sector"`
	PrivateSector float64 `json:"private_sector"`
	Manufacturing float64 `json:"manufacturing"`
	Construction  float64 `json:"construction"`
	Primary       float64 `json:"primary"`
	ICT           float64 `json:"ict"`

	PublicPct        float64 `json:"public_pct"`
	PrivatePct       float64 `json:"private_pct"`
	ManufacturingPct float64 `json:"manufacturing_pct"`
	ICTPct           float64 `json:"ict_pct"`
	ConstructionPct  float64 `json:"construction_pct"`
	PrimaryPct       float64 `json:"primary_pct"`

	// Private sector workers per public sector employee.
	PrivatePerPublic *float64 `json:"private_per_public"`

	Sectors map[string]SectorEmployment `json:"sectors"`
}

// EmploymentChange is the headcount movement over the period.
type EmploymentChange struct {
	Total         float64 `json:"total"`
	Public        float64 `json:"public"`
	Private       float64 `json:"private"`
	Manufacturing float64 `json:"manufacturing"`
}

// ShareChange is the movement of employment shares over the period,
// in percentage points.
type ShareChange struct {
	PublicPct        float64 `json:"public_pct"`
	ManufacturingPct float64 `json:"manufacturing_pct"`
	ICTPct           float64 `json:"ict_pct"`
}

// EmploymentSummary compares the first and last observed year.
type EmploymentSummary struct {
	Period           string           `json:"period"`
	EmploymentChange EmploymentChange `json:"employment_change"`
	ShareChange      ShareChange      `json:"share_change"`
}

// EmploymentData is the output of the employment sectors job.
type EmploymentData struct {
	Metadata   tilasto.Metadata   `json:"metadata"`
	Summary    *EmploymentSummary `json:"summary"`
	TimeSeries []EmploymentYear   `json:"time_series"`
}

// RunEmploymentSectors fetches employment by industry for the whole
// country and writes the public/private structure per year.
func RunEmploymentSectors(ctx context.Context, env Env) error {
	cfg := DefaultEmploymentConfig()

	meta, err := env.Client.TableMeta(ctx, cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to fetch employment table metadata: %w", err)
	}
	yearsVar, ok := meta.Variable("Vuosi")
	if !ok {
		return fmt.Errorf("employment table has no year variable")
	}
	industryVar, ok := meta.Variable("Toimiala")
	if !ok {
		return fmt.Errorf("employment table has no industry variable")
	}

	industries := availableCodes(cfg.Industries, industryVar.Values)
	// The combined O-Q aggregate, when the classification carries one.
	for _, code := range industryVar.Values {
		if strings.Contains(code, "OTQ") || strings.Contains(code, "O-Q") {
			industries = append(industries, code)
			break
		}
	}

	q := pxweb.NewQuery().
		Select("Vuosi", yearsVar.Values...).
		Select("Toimiala", industries...).
		Select("Alue", "SSS").
		Select("Sukupuoli", "SSS")

	records, err := fetchRecords(ctx, env.Client, cfg.Table, q)
	if err != nil {
		return fmt.Errorf("failed to fetch employment sectors: %w", err)
	}

	data := BuildEmploymentData(records)
	data.Metadata = env.Writer.Stamp(Source, cfg.Table,
		"Employed persons by industry (TOL 2008)")

	return env.Writer.WriteDataset("employment_sectors", data)
}

// availableCodes keeps the wanted codes the table actually has, in
// the wanted order.
func availableCodes(wanted, have []string) []string {
	set := make(map[string]bool, len(have))
	for _, code := range have {
		set[code] = true
	}

	out := make([]string, 0, len(wanted))
	for _, code := range wanted {
		if set[code] {
			out = append(out, code)
		}
	}

	return out
}

// publicAggregateCode returns the O-Q aggregate present in the sector
// map, or "".
func publicAggregateCode(sectors map[string]SectorEmployment) string {
	for code := range sectors {
		if strings.Contains(code, "OTQ") || strings.Contains(code, "O-Q") {
			return code
		}
	}

	return ""
}

// BuildEmploymentData groups the industry records by year and derives
// the public/private split and share percentages.
func BuildEmploymentData(records []tilasto.Record) *EmploymentData {
	byYear := make(map[int]*EmploymentYear)

	for i := range records {
		r := &records[i]
		year, err := strconv.Atoi(r.Code("Vuosi"))
		if err != nil {
			continue
		}
		entry, ok := byYear[year]
		if !ok {
			entry = &EmploymentYear{Year: year, Sectors: make(map[string]SectorEmployment)}
			byYear[year] = entry
		}
		entry.Sectors[r.Code("Toimiala")] = SectorEmployment{
			Label:    r.Label("Toimiala"),
			Employed: r.Value,
		}
	}

	data := &EmploymentData{}
	for _, entry := range byYear {
		entry.TotalEmployed = entry.Sectors["SSS"].Employed
		entry.Manufacturing = entry.Sectors["C"].Employed
		entry.Construction = entry.Sectors["F"].Employed
		entry.ICT = entry.Sectors["J"].Employed
		if primary, ok := entry.Sectors["ATA"]; ok {
			entry.Primary = primary.Employed
		} else {
			entry.Primary = entry.Sectors["A"].Employed
		}

		// The O-Q aggregate wins over summing the individual sectors,
		// so nothing is counted twice when both forms are fetched.
		if agg := publicAggregateCode(entry.Sectors); agg != "" {
			entry.PublicSector = entry.Sectors[agg].Employed
		} else {
			entry.PublicSector = entry.Sectors["O"].Employed +
				entry.Sectors["P"].Employed + entry.Sectors["Q"].Employed
		}

		if entry.TotalEmployed > 0 {
			entry.PrivateSector = entry.TotalEmployed - entry.PublicSector
			entry.PublicPct = tilasto.Round2(100 * entry.PublicSector / entry.TotalEmployed)
			entry.PrivatePct = tilasto.Round2(100 * entry.PrivateSector / entry.TotalEmployed)
			entry.ManufacturingPct = tilasto.Round2(100 * entry.Manufacturing / entry.TotalEmployed)
			entry.ICTPct = tilasto.Round2(100 * entry.ICT / entry.TotalEmployed)
			entry.ConstructionPct = tilasto.Round2(100 * entry.Construction / entry.TotalEmployed)
			entry.PrimaryPct = tilasto.Round2(100 * entry.Primary / entry.TotalEmployed)
			if entry.PublicSector > 0 {
				ratio := tilasto.Round2(entry.PrivateSector / entry.PublicSector)
				entry.PrivatePerPublic = &ratio
			}
		}
		data.TimeSeries = append(data.TimeSeries, *entry)
	}

	sort.Slice(data.TimeSeries, func(i, j int) bool {
		return data.TimeSeries[i].Year < data.TimeSeries[j].Year
	})

	if len(data.TimeSeries) >= 2 {
		first, last := data.TimeSeries[0], data.TimeSeries[len(data.TimeSeries)-1]
		data.Summary = &EmploymentSummary{
			Period: strconv.Itoa(first.Year) + "-" + strconv.Itoa(last.Year),
			EmploymentChange: EmploymentChange{
				Total:         last.TotalEmployed - first.TotalEmployed,
				Public:        last.PublicSector - first.PublicSector,
				Private:       last.PrivateSector - first.PrivateSector,
				Manufacturing: last.Manufacturing - first.Manufacturing,
			},
			ShareChange: ShareChange{
				PublicPct:        tilasto.Round2(last.PublicPct - first.PublicPct),
				ManufacturingPct: tilasto.Round2(last.ManufacturingPct - first.ManufacturingPct),
				ICTPct:           tilasto.Round2(last.ICTPct - first.ICTPct),
			},
		}
	}

	return data
}
