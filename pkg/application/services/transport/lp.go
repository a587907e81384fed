package transport

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrInfeasible is returned when supply cannot cover demand
var ErrInfeasible = errors.New("transport problem is infeasible")

// Problem is the transportation problem of one product. Cost is indexed
// [plant][distribution center].
type Problem struct {
	Plants []string
	DCs    []string
	Cost   [][]float64
	Supply []float64
	Demand []float64
}

// Solution holds the optimal integer shipments, indexed like Problem.Cost
type Solution struct {
	Shipped [][]int64
	Cost    float64
}

// Validate checks the problem dimensions and signs
func (p Problem) Validate() error {
	if len(p.Plants) == 0 || len(p.DCs) == 0 {
		return fmt.Errorf("problem needs at least one plant and one distribution center")
	}
	if len(p.Supply) != len(p.Plants) || len(p.Cost) != len(p.Plants) {
		return fmt.Errorf("supply and cost rows must match %d plants", len(p.Plants))
	}
	if len(p.Demand) != len(p.DCs) {
		return fmt.Errorf("demand must match %d distribution centers", len(p.DCs))
	}
	for i, row := range p.Cost {
		if len(row) != len(p.DCs) {
			return fmt.Errorf("cost row of %s has %d columns, want %d", p.Plants[i], len(row), len(p.DCs))
		}
	}
	return nil
}

// Solve minimizes Σ cost·x subject to Σ_d x[p][d] <= supply[p],
// Σ_p x[p][d] >= demand[d] and x >= 0.
//
// The problem is put in standard form with one slack per plant and one
// surplus per distribution center:
//
//	Σ_d x[p][d] + s[p] = supply[p]
//	Σ_p x[p][d] - t[d] = demand[d]
//
// The constraint matrix of a transportation problem is totally unimodular,
// so with integer supply and demand the simplex vertex is integral and
// rounding only removes floating point noise.
func Solve(p Problem, tol float64) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var supply, demand float64
	for _, s := range p.Supply {
		supply += s
	}
	for _, d := range p.Demand {
		demand += d
	}
	if supply < demand {
		return nil, fmt.Errorf("%w: supply %.0f < demand %.0f", ErrInfeasible, supply, demand)
	}

	nP, nD := len(p.Plants), len(p.DCs)
	routes := nP * nD
	nVars := routes + nP + nD
	nRows := nP + nD

	c := make([]float64, nVars)
	A := mat.NewDense(nRows, nVars, nil)
	b := make([]float64, nRows)

	for i := 0; i < nP; i++ {
		for j := 0; j < nD; j++ {
			v := i*nD + j
			c[v] = p.Cost[i][j]
			A.Set(i, v, 1)
			A.Set(nP+j, v, 1)
		}
		A.Set(i, routes+i, 1)
		b[i] = p.Supply[i]
	}
	for j := 0; j < nD; j++ {
		A.Set(nP+j, routes+nP+j, -1)
		b[nP+j] = p.Demand[j]
	}

	_, x, err := lp.Simplex(c, A, b, tol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		return nil, fmt.Errorf("simplex failed: %w", err)
	}

	sol := &Solution{Shipped: make([][]int64, nP)}
	for i := 0; i < nP; i++ {
		sol.Shipped[i] = make([]int64, nD)
		for j := 0; j < nD; j++ {
			q := int64(math.Round(x[i*nD+j]))
			sol.Shipped[i][j] = q
			sol.Cost += float64(q) * p.Cost[i][j]
		}
	}
	return sol, nil
}
