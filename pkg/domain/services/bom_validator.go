package services

import (
	"fmt"
	"sort"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// BOMValidator provides validation for BOM structure integrity
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles         bool
	CyclePaths        [][]entities.MaterialID
	DuplicateLines    []entities.BOMLine
	InvalidLines      []entities.BOMLine
	UnknownProducts   []entities.MaterialID
	UnmappedWholesale []string
	Errors            []string
}

// IsValid reports whether no errors were found
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateBOM performs structural validation on a set of BOM lines
func (v *BOMValidator) ValidateBOM(bomLines []entities.BOMLine) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.MaterialID, 0),
		DuplicateLines: make([]entities.BOMLine, 0),
		Errors:         make([]string, 0),
	}

	for _, line := range bomLines {
		if line.QtyPer <= 0 || line.MaterialIn == "" || line.MaterialOut == "" || line.MaterialIn == line.MaterialOut {
			result.InvalidLines = append(result.InvalidLines, line)
		}
	}

	adjacencyMap := v.buildAdjacencyMap(bomLines)

	cycles := v.detectCycles(adjacencyMap)
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles

	result.DuplicateLines = v.detectDuplicateLines(bomLines)

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d duplicate BOM lines", len(result.DuplicateLines)))
	}
	if len(result.InvalidLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d invalid BOM lines", len(result.InvalidLines)))
	}

	return result
}

// ValidateReferences checks that every product referenced by the demand,
// supply, cost and price tables is a finished product of the BOM, and that
// every wholesaler with demand is mapped to a distribution center.
func (v *BOMValidator) ValidateReferences(
	bomLines []entities.BOMLine,
	referencedProducts []entities.MaterialID,
	wholesalers []string,
	assignments []entities.WholesalerAssignment,
) *ValidationResult {
	result := &ValidationResult{Errors: make([]string, 0)}

	consumed := make(map[entities.MaterialID]bool)
	produced := make(map[entities.MaterialID]bool)
	for _, line := range bomLines {
		consumed[line.MaterialIn] = true
		produced[line.MaterialOut] = true
	}

	seen := make(map[entities.MaterialID]bool)
	for _, product := range referencedProducts {
		if seen[product] {
			continue
		}
		seen[product] = true
		if !produced[product] || consumed[product] {
			result.UnknownProducts = append(result.UnknownProducts, product)
		}
	}
	sort.Slice(result.UnknownProducts, func(i, j int) bool {
		return result.UnknownProducts[i] < result.UnknownProducts[j]
	})

	mapped := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		mapped[a.Wholesaler] = true
	}
	seenWholesaler := make(map[string]bool)
	for _, w := range wholesalers {
		if seenWholesaler[w] {
			continue
		}
		seenWholesaler[w] = true
		if !mapped[w] {
			result.UnmappedWholesale = append(result.UnmappedWholesale, w)
		}
	}
	sort.Strings(result.UnmappedWholesale)

	if len(result.UnknownProducts) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Products not found as BOM finished goods: %v", result.UnknownProducts))
	}
	if len(result.UnmappedWholesale) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Wholesalers without distribution center: %v", result.UnmappedWholesale))
	}

	return result
}

// buildAdjacencyMap creates a map of material out -> materials in
func (v *BOMValidator) buildAdjacencyMap(bomLines []entities.BOMLine) map[entities.MaterialID][]entities.MaterialID {
	adjacencyMap := make(map[entities.MaterialID][]entities.MaterialID)

	for _, line := range bomLines {
		children := adjacencyMap[line.MaterialOut]

		found := false
		for _, child := range children {
			if child == line.MaterialIn {
				found = true
				break
			}
		}

		if !found {
			adjacencyMap[line.MaterialOut] = append(children, line.MaterialIn)
		}
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the BOM structure
func (v *BOMValidator) detectCycles(adjacencyMap map[entities.MaterialID][]entities.MaterialID) [][]entities.MaterialID {
	visited := make(map[entities.MaterialID]bool)
	recursionStack := make(map[entities.MaterialID]bool)
	cycles := make([][]entities.MaterialID, 0)

	// Sorted roots keep reported cycles stable between runs
	parents := make([]entities.MaterialID, 0, len(adjacencyMap))
	for parent := range adjacencyMap {
		parents = append(parents, parent)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parent := range parents {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle performs depth-first search to detect cycles
func (v *BOMValidator) dfsDetectCycle(
	current entities.MaterialID,
	adjacencyMap map[entities.MaterialID][]entities.MaterialID,
	visited map[entities.MaterialID]bool,
	recursionStack map[entities.MaterialID]bool,
	path []entities.MaterialID,
	cycles *[][]entities.MaterialID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
		} else if recursionStack[child] {
			for i, part := range path {
				if part == child {
					cycle := make([]entities.MaterialID, 0, len(path)-i+1)
					cycle = append(cycle, path[i:]...)
					cycle = append(cycle, child)
					*cycles = append(*cycles, cycle)
					break
				}
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateLines finds duplicate BOM lines (same material in and out)
func (v *BOMValidator) detectDuplicateLines(bomLines []entities.BOMLine) []entities.BOMLine {
	seen := make(map[string]entities.BOMLine)
	duplicates := make([]entities.BOMLine, 0)

	for _, line := range bomLines {
		key := fmt.Sprintf("%s|%s", line.MaterialOut, line.MaterialIn)
		if existingLine, exists := seen[key]; exists {
			duplicates = append(duplicates, line, existingLine)
		} else {
			seen[key] = line
		}
	}

	return duplicates
}
