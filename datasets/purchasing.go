package datasets

import (
	"context"
	"fmt"
	"math"

	"tilasto"
)

// PurchasingConfig pins the base years of the purchasing power
// derivation. Wealth survey waves do not align with the income base
// year, so the nearest waves are used for the wealth comparison.
type PurchasingConfig struct {
	BaseYear        int
	WealthBaseYear  int
	WealthFinalYear int
	DecileLabels    map[string]string
}

func DefaultPurchasingConfig() PurchasingConfig {
	return PurchasingConfig{
		BaseYear:        2015,
		WealthBaseYear:  2016,
		WealthFinalYear: 2023,
		DecileLabels: map[string]string{
			"1": "I (Lowest 10%)", "2": "II", "3": "III", "4": "IV",
			"5": "V (Median)", "6": "VI", "7": "VII", "8": "VIII",
			"9": "IX", "10": "X (Top 10%)", "SS": "Total",
		},
	}
}

// PurchasingDecile is one decile's nominal and essentials-deflated
// income for one year.
type PurchasingDecile struct {
	NominalIncome   *float64 `json:"nominal_income"`
	RealIncome      *float64 `json:"real_income"`
	NominalMedian   *float64 `json:"nominal_median"`
	RealMedian      *float64 `json:"real_median"`
	RealIncomeIndex *float64 `json:"real_income_index"`
}

// PurchasingEntry is one year across all deciles.
type PurchasingEntry struct {
	Year    int                          `json:"year"`
	Deciles map[string]*PurchasingDecile `json:"deciles"`
}

// DecileChange summarizes one decile over the whole period.
type DecileChange struct {
	RealIncomeChangePct    *float64 `json:"real_income_change_pct,omitempty"`
	NominalIncomeChangePct *float64 `json:"nominal_income_change_pct,omitempty"`
	WealthChangePct        *float64 `json:"wealth_change_pct,omitempty"`
}

// PurchasingSummary is the headline of the purchasing power dataset.
type PurchasingSummary struct {
	IncomePeriod  string                  `json:"income_period"`
	WealthPeriod  string                  `json:"wealth_period"`
	DecileChanges map[string]DecileChange `json:"decile_changes"`
	Gaps          struct {
		IncomeGapWidened float64 `json:"income_gap_widened"`
		WealthGapWidened float64 `json:"wealth_gap_widened"`
	} `json:"gaps"`
	KeyInsight string `json:"key_insight"`
}

// PurchasingPowerData is the output of the purchasing power job.
type PurchasingPowerData struct {
	Metadata         tilasto.Metadata  `json:"metadata"`
	Summary          PurchasingSummary `json:"summary"`
	IncomeTimeSeries []PurchasingEntry `json:"income_time_series"`
	WealthYears      []int             `json:"wealth_years_available"`
	DecileLabels     map[string]string `json:"decile_labels"`
}

// RunPurchasingPower derives real purchasing power per decile from
// the income, wealth and essentials index datasets written earlier.
func RunPurchasingPower(_ context.Context, env Env) error {
	income := &IncomeData{}
	if err := LoadDataset(env.DataDir, "income_deciles", income); err != nil {
		return err
	}

	wealth := &WealthData{}
	if err := LoadDataset(env.DataDir, "wealth_deciles", wealth); err != nil {
		return err
	}

	essentials := &EssentialsIndexData{}
	if err := LoadDataset(env.DataDir, "essentials_index", essentials); err != nil {
		return err
	}

	cfg := DefaultPurchasingConfig()
	data := BuildPurchasingPower(income, wealth, essentials, cfg)
	data.Metadata = env.Writer.Stamp(Source, "",
		"Real purchasing power by income decile, deflated by the essentials index")
	data.Metadata.BaseYear = cfg.BaseYear

	return env.Writer.WriteDataset("purchasing_power", data)
}

// EssentialsDeflator returns the essentials index divided by 100 for
// the given year, 1 when the year is not covered.
func EssentialsDeflator(essentials *EssentialsIndexData, year int) float64 {
	for i := range essentials.TimeSeries {
		if essentials.TimeSeries[i].Year == year {
			return essentials.TimeSeries[i].Essentials.Index / 100
		}
	}

	return 1
}

// BuildPurchasingPower deflates nominal decile incomes and derives
// period change summaries.
func BuildPurchasingPower(income *IncomeData, wealth *WealthData, essentials *EssentialsIndexData, cfg PurchasingConfig) *PurchasingPowerData {
	data := &PurchasingPowerData{DecileLabels: cfg.DecileLabels}

	for _, entry := range income.TimeSeries {
		deflator := EssentialsDeflator(essentials, entry.Year)
		out := PurchasingEntry{Year: entry.Year, Deciles: make(map[string]*PurchasingDecile, len(entry.Deciles))}

		for decile, dm := range entry.Deciles {
			pd := &PurchasingDecile{}
			if v, ok := dm.Values["kturaha"]; ok {
				nominal := v
				pd.NominalIncome = &nominal
				if deflator > 0 {
					real := math.Round(v / deflator)
					pd.RealIncome = &real
				}
			}
			if v, ok := dm.Values["kturaha_med"]; ok {
				nominal := v
				pd.NominalMedian = &nominal
				if deflator > 0 {
					real := math.Round(v / deflator)
					pd.RealMedian = &real
				}
			}
			out.Deciles[decile] = pd
		}
		data.IncomeTimeSeries = append(data.IncomeTimeSeries, out)
	}

	// Real income index against the base year.
	var base *PurchasingEntry
	for i := range data.IncomeTimeSeries {
		if data.IncomeTimeSeries[i].Year == cfg.BaseYear {
			base = &data.IncomeTimeSeries[i]

			break
		}
	}
	if base != nil {
		for i := range data.IncomeTimeSeries {
			for decile, pd := range data.IncomeTimeSeries[i].Deciles {
				basePd, ok := base.Deciles[decile]
				if !ok || basePd.RealIncome == nil || pd.RealIncome == nil || *basePd.RealIncome <= 0 {
					continue
				}
				idx := tilasto.Round1(*pd.RealIncome / *basePd.RealIncome * 100)
				pd.RealIncomeIndex = &idx
			}
		}
	}

	for _, entry := range wealth.TimeSeries {
		data.WealthYears = append(data.WealthYears, entry.Year)
	}

	data.Summary = buildPurchasingSummary(data, wealth, cfg)

	return data
}

func buildPurchasingSummary(data *PurchasingPowerData, wealth *WealthData, cfg PurchasingConfig) PurchasingSummary {
	s := PurchasingSummary{DecileChanges: make(map[string]DecileChange)}
	if len(data.IncomeTimeSeries) == 0 {
		return s
	}

	first := data.IncomeTimeSeries[0]
	last := data.IncomeTimeSeries[len(data.IncomeTimeSeries)-1]
	s.IncomePeriod = fmt.Sprintf("%d-%d", first.Year, last.Year)
	s.WealthPeriod = fmt.Sprintf("%d-%d", cfg.WealthBaseYear, cfg.WealthFinalYear)

	var wealthBase, wealthLast *WealthEntry
	for i := range wealth.TimeSeries {
		switch wealth.TimeSeries[i].Year {
		case cfg.WealthBaseYear:
			wealthBase = &wealth.TimeSeries[i]
		case cfg.WealthFinalYear:
			wealthLast = &wealth.TimeSeries[i]
		}
	}

	changePct := func(from, to *float64) *float64 {
		if from == nil || to == nil || *from == 0 {
			return nil
		}
		// abs base keeps the sign meaningful when the starting
		// position is negative (indebted deciles).
		v := tilasto.Round1((*to - *from) / math.Abs(*from) * 100)

		return &v
	}

	for decile := range cfg.DecileLabels {
		dc := DecileChange{}

		if fd, ok := first.Deciles[decile]; ok {
			if ld, ok := last.Deciles[decile]; ok {
				dc.RealIncomeChangePct = changePct(fd.RealIncome, ld.RealIncome)
				dc.NominalIncomeChangePct = changePct(fd.NominalIncome, ld.NominalIncome)
			}
		}

		if wealthBase != nil && wealthLast != nil {
			if wb, ok := wealthBase.Deciles[decile]; ok {
				if wl, ok := wealthLast.Deciles[decile]; ok {
					from := wb.Median["nettoae_DN3001"]
					to := wl.Median["nettoae_DN3001"]
					if from != 0 {
						dc.WealthChangePct = changePct(&from, &to)
					}
				}
			}
		}

		s.DecileChanges[decile] = dc
	}

	bottomIncome := deref(s.DecileChanges["1"].RealIncomeChangePct)
	topIncome := deref(s.DecileChanges["10"].RealIncomeChangePct)
	bottomWealth := deref(s.DecileChanges["1"].WealthChangePct)
	topWealth := deref(s.DecileChanges["10"].WealthChangePct)

	s.Gaps.IncomeGapWidened = tilasto.Round1(topIncome - bottomIncome)
	s.Gaps.WealthGapWidened = tilasto.Round1(topWealth - bottomWealth)

	s.KeyInsight = fmt.Sprintf(
		"Since %d, the bottom 10%% saw real purchasing power change %.1f%% while the top 10%% changed %.1f%%. The wealth gap moved by %.0f percentage points.",
		first.Year, bottomIncome, topIncome, s.Gaps.WealthGapWidened)

	return s
}
