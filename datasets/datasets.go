// Package datasets holds the per-dataset batch jobs: each fetches one
// or more statistical tables, decodes them into flat records and
// applies its own arithmetic before writing a JSON file for the
// front-end. Transforms are pure functions of (records, config) so
// they are testable without network access.
package datasets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"tilasto"
	"tilasto/pxweb"
)

// Source is the provider name stamped into every output file.
const Source = "Statistics Finland"

// Env is what a job needs to run: the API client, the dataset writer
// and the directory earlier jobs wrote into, for jobs deriving from
// already fetched datasets.
type Env struct {
	Client  *pxweb.Client
	Writer  tilasto.DatasetWriter
	DataDir string
	Logger  *zap.Logger
}

// Job is one independent batch step. Jobs run sequentially; a failed
// job is reported to the caller and must not block the following ones.
type Job struct {
	Name string
	Run  func(ctx context.Context, env Env) error
}

// All returns every job in execution order. Derived jobs (essentials
// index, purchasing power, sustainability index, workforce
// projection) come after the fetches they read from.
func All() []Job {
	return []Job{
		{Name: "cpi", Run: RunCPI},
		{Name: "assets", Run: RunAssets},
		{Name: "essentials-index", Run: RunEssentialsIndex},
		{Name: "income-deciles", Run: RunIncomeDeciles},
		{Name: "wealth-deciles", Run: RunWealthDeciles},
		{Name: "purchasing-power", Run: RunPurchasingPower},
		{Name: "government-debt", Run: RunGovernmentDebt},
		{Name: "municipal-debt", Run: RunMunicipalDebt},
		{Name: "population", Run: RunPopulation},
		{Name: "sustainability-index", Run: RunSustainabilityIndex},
		{Name: "public-spending", Run: RunPublicSpending},
		{Name: "spending-efficiency", Run: RunSpendingEfficiency},
		{Name: "public-subsidies", Run: RunPublicSubsidies},
		{Name: "employment-sectors", Run: RunEmploymentSectors},
		{Name: "gdp-sectors", Run: RunGDPSectors},
		{Name: "workforce-projection", Run: RunWorkforceProjection},
		{Name: "fertility", Run: RunFertility},
		{Name: "trade-balance", Run: RunTradeBalance},
	}
}

// LoadDataset reads a dataset written earlier in the run (or by a
// previous run) back from the data directory.
func LoadDataset(dir, name string, v interface{}) error {
	path := filepath.Join(dir, name+".json")
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset %s: %w", name, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode dataset %s: %w", name, err)
	}

	return nil
}

// fetchRecords posts the query and decodes the response table.
func fetchRecords(ctx context.Context, c *pxweb.Client, table string, q *pxweb.Query) ([]tilasto.Record, error) {
	t, err := c.Table(ctx, table, q)
	if err != nil {
		return nil, err
	}

	records, err := tilasto.Decode(t)
	if err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", table, err)
	}

	return records, nil
}

// deref reads an optional value, defaulting to zero.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}

// sortedKeys returns the group codes in lexical order so output files
// are stable across runs.
func sortedKeys(groups map[string][]tilasto.Record) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// yearCodes renders an inclusive year range as category codes.
func yearCodes(from, to int) []string {
	codes := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		codes = append(codes, fmt.Sprintf("%d", y))
	}

	return codes
}
