package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Loader handles loading the input tables from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDemand loads historical demand from a CSV file
func (l *Loader) LoadDemand(filename string) ([]*entities.DemandRecord, error) {
	records, err := readRecords(filename, "demand", []string{"product", "sku", "wholesaler", "date", "demand"})
	if err != nil {
		return nil, err
	}

	demands := make([]*entities.DemandRecord, 0, len(records))
	for i, record := range records {
		date, err := time.Parse(dateLayout, record[3])
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: invalid date format: %s (expected YYYY-MM-DD)", i+2, record[3])
		}
		qty, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: invalid demand: %s", i+2, record[4])
		}
		d, err := entities.NewDemandRecord(entities.MaterialID(record[0]), record[1], record[2], date, entities.Quantity(qty))
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, err)
		}
		demands = append(demands, d)
	}
	return demands, nil
}

// LoadAssignments loads the distribution center to wholesaler mapping
func (l *Loader) LoadAssignments(filename string) ([]*entities.WholesalerAssignment, error) {
	records, err := readRecords(filename, "mapping", []string{"distribution_center", "wholesaler"})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(records))
	assignments := make([]*entities.WholesalerAssignment, 0, len(records))
	for i, record := range records {
		if record[0] == "" || record[1] == "" {
			return nil, fmt.Errorf("mapping CSV row %d: distribution center and wholesaler are required", i+2)
		}
		if dc, dup := seen[record[1]]; dup && dc != record[0] {
			return nil, fmt.Errorf("mapping CSV row %d: wholesaler %s already assigned to %s", i+2, record[1], dc)
		}
		seen[record[1]] = record[0]
		assignments = append(assignments, &entities.WholesalerAssignment{
			DistributionCenter: record[0],
			Wholesaler:         record[1],
		})
	}
	return assignments, nil
}

// LoadBOM loads BOM lines from a CSV file
func (l *Loader) LoadBOM(filename string) ([]*entities.BOMLine, error) {
	records, err := readRecords(filename, "BOM", []string{"material_in", "material_out", "qty"})
	if err != nil {
		return nil, err
	}

	lines := make([]*entities.BOMLine, 0, len(records))
	for i, record := range records {
		qty, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: invalid qty: %s", i+2, record[2])
		}
		line, err := entities.NewBOMLine(entities.MaterialID(record[0]), entities.MaterialID(record[1]), entities.Quantity(qty))
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// LoadPlantSupply loads plant supply from a CSV file
func (l *Loader) LoadPlantSupply(filename string) ([]*entities.PlantSupply, error) {
	records, err := readRecords(filename, "plant supply", []string{"product", "plant", "supply"})
	if err != nil {
		return nil, err
	}

	supply := make([]*entities.PlantSupply, 0, len(records))
	for i, record := range records {
		qty, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("plant supply CSV row %d: invalid supply: %s", i+2, record[2])
		}
		s, err := entities.NewPlantSupply(entities.MaterialID(record[0]), record[1], entities.Quantity(qty))
		if err != nil {
			return nil, fmt.Errorf("plant supply CSV row %d: %w", i+2, err)
		}
		supply = append(supply, s)
	}
	return supply, nil
}

// LoadTransportCosts loads transport costs from a CSV file
func (l *Loader) LoadTransportCosts(filename string) ([]*entities.TransportCost, error) {
	records, err := readRecords(filename, "transport cost", []string{"product", "plant", "distribution_center", "cost"})
	if err != nil {
		return nil, err
	}

	costs := make([]*entities.TransportCost, 0, len(records))
	for i, record := range records {
		cost, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("transport cost CSV row %d: invalid cost: %s", i+2, record[3])
		}
		c, err := entities.NewTransportCost(entities.MaterialID(record[0]), record[1], record[2], cost)
		if err != nil {
			return nil, fmt.Errorf("transport cost CSV row %d: %w", i+2, err)
		}
		costs = append(costs, c)
	}
	return costs, nil
}

// LoadListPrices loads list prices from a CSV file
func (l *Loader) LoadListPrices(filename string) ([]*entities.ListPrice, error) {
	records, err := readRecords(filename, "list prices", []string{"product", "price"})
	if err != nil {
		return nil, err
	}

	prices := make([]*entities.ListPrice, 0, len(records))
	for i, record := range records {
		price, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("list prices CSV row %d: invalid price: %s", i+2, record[1])
		}
		p, err := entities.NewListPrice(entities.MaterialID(record[0]), price)
		if err != nil {
			return nil, fmt.Errorf("list prices CSV row %d: %w", i+2, err)
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// readRecords opens filename, validates its header and returns the data rows
func readRecords(filename, label string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", label, filename, err)
	}
	defer file.Close()

	return parseRecords(file, label, expectedHeader)
}

func parseRecords(r io.Reader, label string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", label, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", label)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", label, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", label, i+2, len(expectedHeader), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
