package datasets

import (
	"context"
	"fmt"

	"tilasto"
	"tilasto/pxweb"
)

// AssetConfig covers the asset and wage indicators compared against
// the essentials index. The two stock series are carried as static
// yearly values because the statistics API has no data for them; they
// are rebased to BaseYear = 100 before output.
type AssetConfig struct {
	HousingTable string
	GDPTable     string
	WageTable    string
	YearFrom     int
	YearTo       int
	BaseYear     int

	// Yearly closing or average levels from exchange data.
	DomesticStocks tilasto.Series
	SP500          tilasto.Series
}

func DefaultAssetConfig() AssetConfig {
	return AssetConfig{
		HousingTable: "StatFin/ashi/statfin_ashi_pxt_13mz.px",
		GDPTable:     "StatFin/vtp/statfin_vtp_pxt_123x.px",
		WageTable:    "StatFin/ati/statfin_ati_pxt_14un.px",
		YearFrom:     2015,
		YearTo:       2024,
		BaseYear:     2015,
		DomesticStocks: tilasto.Series{
			2015: 3447, 2016: 3602, 2017: 4157, 2018: 4090, 2019: 4463,
			2020: 4299, 2021: 5562, 2022: 4604, 2023: 4454, 2024: 4892,
		},
		SP500: tilasto.Series{
			2015: 2043, 2016: 2238, 2017: 2673, 2018: 2506, 2019: 3230,
			2020: 3756, 2021: 4766, 2022: 3839, 2023: 4769, 2024: 5881,
		},
	}
}

// AssetSeries is one named indicator series.
type AssetSeries struct {
	Name   string         `json:"name"`
	Values tilasto.Series `json:"values"`
}

// AssetData bundles the indicator series consumed by the essentials
// index and purchasing power jobs.
type AssetData struct {
	Metadata    tilasto.Metadata `json:"metadata"`
	Housing     *AssetSeries     `json:"housing_price_index"`
	GDP         *AssetSeries     `json:"gdp_per_capita"`
	WageNominal *AssetSeries     `json:"wage_index_nominal"`
	WageReal    *AssetSeries     `json:"wage_index_real"`
	Domestic    *AssetSeries     `json:"omx_helsinki_25"`
	SP500       *AssetSeries     `json:"sp500"`
}

// RunAssets fetches housing, GDP and wage indices and writes them
// together with the rebased stock series.
func RunAssets(ctx context.Context, env Env) error {
	cfg := DefaultAssetConfig()
	years := yearCodes(cfg.YearFrom, cfg.YearTo)

	housing, err := fetchRecords(ctx, env.Client, cfg.HousingTable, pxweb.NewQuery().
		Select("Vuosi", years...).
		Select("Alue", "ksu").
		Select("Talotyyppi", "0").
		Select("Huoneluku", "00").
		Select("Tiedot", "ind15"))
	if err != nil {
		return fmt.Errorf("failed to fetch housing index: %w", err)
	}

	gdp, err := fetchRecords(ctx, env.Client, cfg.GDPTable, pxweb.NewQuery().
		Select("Taloustoimi", "B1GMH").
		Select("Vuosi", years...).
		Select("Tiedot", "vol_ind"))
	if err != nil {
		return fmt.Errorf("failed to fetch gdp index: %w", err)
	}

	wages, err := fetchRecords(ctx, env.Client, cfg.WageTable, pxweb.NewQuery().
		Select("Sektori", "SSS").
		Select("Palkkausmuoto", "0").
		Select("Sukupuoli", "SSS").
		Select("Vuosi", years...).
		Select("Tiedot", "ati_2015_100", "real_2015_100"))
	if err != nil {
		return fmt.Errorf("failed to fetch wage indices: %w", err)
	}

	data := BuildAssetData(housing, gdp, wages, cfg)
	data.Metadata = env.Writer.Stamp(Source, "", "Asset, GDP and wage indices")
	data.Metadata.BaseYear = cfg.BaseYear

	return env.Writer.WriteDataset("asset_prices", data)
}

// BuildAssetData assembles the indicator bundle from decoded records
// and the static stock configuration.
func BuildAssetData(housing, gdp, wages []tilasto.Record, cfg AssetConfig) *AssetData {
	wageByInfo := tilasto.PivotByYear(wages, "Vuosi", "Tiedot")

	return &AssetData{
		Housing:     &AssetSeries{Name: "Housing price index", Values: tilasto.SeriesByYear(housing, "Vuosi")},
		GDP:         &AssetSeries{Name: "GDP volume index", Values: tilasto.SeriesByYear(gdp, "Vuosi")},
		WageNominal: &AssetSeries{Name: "Nominal wage index", Values: wageByInfo["ati_2015_100"]},
		WageReal:    &AssetSeries{Name: "Real wage index", Values: wageByInfo["real_2015_100"]},
		Domestic:    &AssetSeries{Name: "OMX Helsinki 25", Values: tilasto.Rebase(cfg.DomesticStocks, cfg.BaseYear)},
		SP500:       &AssetSeries{Name: "S&P 500", Values: tilasto.Rebase(cfg.SP500, cfg.BaseYear)},
	}
}
