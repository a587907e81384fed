package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// Formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	// OutputDir receives <name>.json or <name>_<table>.csv files instead of w
	OutputDir string
	Verbose   bool
}

// Table is a named block of rows
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Write renders result in the configured format. name prefixes the files
// written to OutputDir.
func Write(w io.Writer, name string, result interface{}, config Config) error {
	switch config.Format {
	case "", FormatText:
		return writeText(w, result)
	case FormatJSON:
		return writeJSON(w, name, result, config)
	case FormatCSV:
		return writeCSV(w, name, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func writeJSON(w io.Writer, name string, result interface{}, config Config) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, name+".json")
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

func writeCSV(w io.Writer, name string, result interface{}, config Config) error {
	tables, _ := Tables(result)
	if len(tables) == 0 {
		return fmt.Errorf("no tabular output for %T", result)
	}

	if config.OutputDir == "" {
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := writeCSVTable(w, t); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, t := range tables {
		filename := filepath.Join(config.OutputDir, name+"_"+t.Name+".csv")
		if err := writeCSVFile(filename, t); err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(w, "💾 %s saved to: %s\n", t.Name, filename)
		}
	}
	return nil
}

func writeCSVFile(filename string, t Table) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := writeCSVTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSVTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", t.Name, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", t.Name, err)
	}
	return nil
}

func writeText(w io.Writer, result interface{}) error {
	writeSummary(w, result)
	tables, _ := Tables(result)
	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "📋 %s:\n", t.Name)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		writeTabRow(tw, t.Header)
		for _, row := range t.Rows {
			writeTabRow(tw, row)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeTabRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, strings.Join(strings.Fields(c), " "))
	}
	fmt.Fprintln(w)
}

func writeSummary(w io.Writer, result interface{}) {
	switch r := result.(type) {
	case *dto.SetupResult:
		fmt.Fprintf(w, "📊 Setup Summary\n===============\n\n")
		fmt.Fprintf(w, "Products: %d\nPlants: %d\nDistribution Centers: %d\nWholesalers: %d\n",
			r.Products, r.Plants, r.DCs, r.Wholesalers)
		fmt.Fprintf(w, "Demand Rows: %d\nBOM Lines: %d\nSupply Rows: %d\nCost Rows: %d\nPrice Rows: %d\n",
			r.DemandRows, r.BOMLines, r.SupplyRows, r.CostRows, r.PriceRows)
		if r.ValidationOK {
			fmt.Fprintf(w, "✅ BOM validation passed\n\n")
		} else {
			fmt.Fprintf(w, "⚠️  BOM validation reported warnings\n\n")
		}
	case *dto.ForecastResult:
		fmt.Fprintf(w, "📈 Forecast Summary\n==================\n\n")
		fmt.Fprintf(w, "Series: %d\nPoints: %d\nDC Rows: %d\nMean RMSE: %.3f\n",
			r.Series, len(r.Points), len(r.DCDemand), r.MeanRMSE)
		for method, n := range r.Methods {
			fmt.Fprintf(w, "  %s: %d\n", method, n)
		}
		if r.UnmappedSeries > 0 {
			fmt.Fprintf(w, "⚠️  Unmapped series: %d\n", r.UnmappedSeries)
		}
		fmt.Fprintf(w, "Processing Time: %v\n\n", r.ProcessingTime)
	case *dto.RawMaterialResult:
		fmt.Fprintf(w, "🧪 Raw Material Summary\n======================\n\n")
		fmt.Fprintf(w, "Raw Materials: %d\nFinished Products: %d\n", len(r.Requirements), len(r.FinishedDemand))
		if len(r.UnknownProducts) > 0 {
			fmt.Fprintf(w, "⚠️  Products missing from the BOM: %v\n", r.UnknownProducts)
		}
		fmt.Fprintf(w, "Processing Time: %v\n\n", r.ProcessingTime)
	case *dto.TransportResult:
		fmt.Fprintf(w, "🚚 Transport Summary\n===================\n\n")
		fmt.Fprintf(w, "Optimal Products: %d\nTotal Cost: %s\n", r.Optimal, r.TotalCost.StringFixed(2))
		if len(r.Infeasible) > 0 {
			fmt.Fprintf(w, "⚠️  Infeasible: %v\n", r.Infeasible)
		}
		if len(r.Skipped) > 0 {
			fmt.Fprintf(w, "⚠️  Skipped: %v\n", r.Skipped)
		}
		fmt.Fprintf(w, "Processing Time: %v\n\n", r.ProcessingTime)
	case *dto.EmailIndexResult:
		fmt.Fprintf(w, "📧 Emails: %d, indexed: %d, already indexed: %d (model %s)\n\n",
			r.Emails, r.Indexed, r.Skipped, r.Model)
	case *dto.PipelineReport:
		fmt.Fprintf(w, "🏭 Pipeline Report\n=================\n\n")
		for _, sub := range []interface{}{r.Setup, r.Forecast, r.RawMaterial, r.Transport, r.Emails} {
			if !isNil(sub) {
				writeSummary(w, sub)
			}
		}
	case *entities.RevenueRisk:
		fmt.Fprintf(w, "💰 Revenue at risk for a shortfall of %d %s: %s\n\n",
			r.Shortfall, r.Raw, r.MaxExposure.StringFixed(2))
	case *dto.ProductDemand:
		fmt.Fprintf(w, "📦 Demand for %s", r.Product)
		if r.Wholesaler != "" {
			fmt.Fprintf(w, " at %s", r.Wholesaler)
		}
		fmt.Fprintf(w, ": %d historical units over %d rows\n\n", r.Total, len(r.Historical))
	case *dto.GenieAnswer:
		fmt.Fprintf(w, "🤖 %s\n   tool: %s (%s) %v\n\n", r.Question, r.Tool, r.Source, r.Arguments)
		if r.Result != nil {
			writeSummary(w, r.Result)
		}
	}
}

func isNil(v interface{}) bool {
	switch r := v.(type) {
	case *dto.SetupResult:
		return r == nil
	case *dto.ForecastResult:
		return r == nil
	case *dto.RawMaterialResult:
		return r == nil
	case *dto.TransportResult:
		return r == nil
	case *dto.EmailIndexResult:
		return r == nil
	}
	return v == nil
}

// Tables flattens a result into tables. It reports false for result types
// without rows.
func Tables(result interface{}) ([]Table, bool) {
	switch r := result.(type) {
	case *dto.ForecastResult:
		return []Table{forecastTable(r.Points), dcDemandTable(r.DCDemand)}, true
	case *dto.RawMaterialResult:
		return []Table{rawMaterialTable(r.Requirements)}, true
	case *dto.TransportResult:
		return []Table{shipmentTable(r.Recommendations)}, true
	case *dto.PipelineReport:
		tables := []Table{stageTable(r.Stages)}
		for _, sub := range []interface{}{r.Forecast, r.RawMaterial, r.Transport} {
			if !isNil(sub) {
				more, _ := Tables(sub)
				tables = append(tables, more...)
			}
		}
		return tables, true
	case []entities.MaterialUsage:
		return []Table{usageTable(r)}, true
	case *entities.RevenueRisk:
		return []Table{exposureTable(r.Exposures)}, true
	case *dto.ProductDemand:
		return []Table{historyTable(r.Historical), forecastTable(r.Forecast)}, true
	case []entities.EmailMatch:
		return []Table{emailTable(r)}, true
	case []*repositories.PipelineRun:
		return []Table{runTable(r)}, true
	case *dto.GenieAnswer:
		return Tables(r.Result)
	}
	return nil, false
}

func forecastTable(points []entities.ForecastPoint) Table {
	t := Table{Name: "forecast", Header: []string{"product", "wholesaler", "date", "demand"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{string(p.Product), p.Wholesaler, p.Date.Format(time.DateOnly), qty(p.Demand)})
	}
	return t
}

func dcDemandTable(rows []entities.DCDemand) Table {
	t := Table{Name: "dc_demand", Header: []string{"product", "distribution_center", "demand"}}
	for _, d := range rows {
		t.Rows = append(t.Rows, []string{string(d.Product), d.DistributionCenter, qty(d.Demand)})
	}
	return t
}

func rawMaterialTable(reqs []entities.RawMaterialRequirement) Table {
	t := Table{Name: "raw_material_demand", Header: []string{"raw", "demand"}}
	for _, r := range reqs {
		t.Rows = append(t.Rows, []string{string(r.Raw), qty(r.Demand)})
	}
	return t
}

func shipmentTable(recs []entities.ShipmentRecommendation) Table {
	t := Table{Name: "shipment_recommendations", Header: []string{"product", "plant", "distribution_center", "qty_shipped"}}
	for _, r := range recs {
		shipped := ""
		if r.QtyShipped != nil {
			shipped = qty(*r.QtyShipped)
		}
		t.Rows = append(t.Rows, []string{string(r.Product), deref(r.Plant), deref(r.DistributionCenter), shipped})
	}
	return t
}

func stageTable(stages []dto.StageReport) Table {
	t := Table{Name: "stages", Header: []string{"run_id", "stage", "status", "duration", "detail"}}
	for _, s := range stages {
		t.Rows = append(t.Rows, []string{s.RunID, s.Stage, s.Status, s.Duration.Round(time.Millisecond).String(), s.Detail})
	}
	return t
}

func usageTable(usage []entities.MaterialUsage) Table {
	t := Table{Name: "usage", Header: []string{"product", "raw", "qty_per_unit", "min_level"}}
	for _, u := range usage {
		t.Rows = append(t.Rows, []string{string(u.Product), string(u.Raw), qty(u.QtyPer), strconv.Itoa(u.MinLevel)})
	}
	return t
}

func exposureTable(exposures []entities.ProductExposure) Table {
	t := Table{Name: "revenue_risk", Header: []string{"product", "raw_per_unit", "lost_units", "list_price", "revenue_at_risk"}}
	for _, e := range exposures {
		price := e.ListPrice.StringFixed(2)
		if e.MissingPrice {
			price = "n/a"
		}
		t.Rows = append(t.Rows, []string{string(e.Product), qty(e.RawPerUnit), qty(e.LostUnits), price, e.RevenueAtRisk.StringFixed(2)})
	}
	return t
}

func historyTable(records []entities.DemandRecord) Table {
	t := Table{Name: "historical", Header: []string{"product", "sku", "wholesaler", "date", "demand"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{string(r.Product), r.SKU, r.Wholesaler, r.Date.Format(time.DateOnly), qty(r.Demand)})
	}
	return t
}

func emailTable(matches []entities.EmailMatch) Table {
	t := Table{Name: "emails", Header: []string{"date", "similarity_score", "content"}}
	for _, m := range matches {
		t.Rows = append(t.Rows, []string{m.Date.Format(time.DateTime), strconv.FormatFloat(m.Score, 'f', 4, 64), m.Content})
	}
	return t
}

func runTable(runs []*repositories.PipelineRun) Table {
	t := Table{Name: "runs", Header: []string{"id", "stage", "status", "started_at", "finished_at", "detail"}}
	for _, r := range runs {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		t.Rows = append(t.Rows, []string{r.ID, r.Stage, r.Status, r.StartedAt.Format(time.RFC3339), finished, r.Detail})
	}
	return t
}

func qty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
