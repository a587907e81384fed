package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Method names the model used for one series
type Method string

const (
	MethodHoltWinters Method = "holt_winters"
	MethodHolt        Method = "holt"
	MethodMean        Method = "mean"
)

// Fit is a fitted exponential smoothing model
type Fit struct {
	Method Method
	Alpha  float64
	Beta   float64
	Gamma  float64
	// RMSE of the in-sample one step ahead forecasts
	RMSE float64

	level  float64
	trend  float64
	season []float64
	n      int
}

// FitSeries fits the richest model the series length allows: additive
// Holt-Winters with two full seasons, Holt's linear trend with three points,
// the mean otherwise. Smoothing parameters minimize the one step ahead SSE.
func FitSeries(y []float64, seasonLength int) Fit {
	switch {
	case seasonLength >= 2 && len(y) >= 2*seasonLength:
		return fitHoltWinters(y, seasonLength)
	case len(y) >= 3:
		return fitHolt(y)
	default:
		mean := 0.0
		if len(y) > 0 {
			mean = stat.Mean(y, nil)
		}
		return Fit{Method: MethodMean, level: mean, n: len(y)}
	}
}

// Forecast returns h values after the end of the series, clamped at zero
func (f Fit) Forecast(h int) []float64 {
	out := make([]float64, h)
	for i := 1; i <= h; i++ {
		v := f.level
		switch f.Method {
		case MethodHolt:
			v += float64(i) * f.trend
		case MethodHoltWinters:
			m := len(f.season)
			v += float64(i)*f.trend + f.season[(f.n+i-1)%m]
		}
		out[i-1] = math.Max(0, v)
	}
	return out
}

func fitHolt(y []float64) Fit {
	sse := func(alpha, beta float64) float64 {
		_, _, sse := runHolt(y, alpha, beta)
		return sse
	}
	p := minimize(2, func(x []float64) float64 { return sse(x[0], x[1]) })
	level, trend, best := runHolt(y, p[0], p[1])
	return Fit{
		Method: MethodHolt,
		Alpha:  p[0],
		Beta:   p[1],
		RMSE:   math.Sqrt(best / float64(len(y)-1)),
		level:  level,
		trend:  trend,
		n:      len(y),
	}
}

func runHolt(y []float64, alpha, beta float64) (level, trend, sse float64) {
	level, trend = y[0], y[1]-y[0]
	for t := 1; t < len(y); t++ {
		pred := level + trend
		e := y[t] - pred
		sse += e * e
		prev := level
		level = alpha*y[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prev) + (1-beta)*trend
	}
	return level, trend, sse
}

func fitHoltWinters(y []float64, m int) Fit {
	p := minimize(3, func(x []float64) float64 {
		_, _, _, sse := runHoltWinters(y, m, x[0], x[1], x[2])
		return sse
	})
	level, trend, season, best := runHoltWinters(y, m, p[0], p[1], p[2])
	return Fit{
		Method: MethodHoltWinters,
		Alpha:  p[0],
		Beta:   p[1],
		Gamma:  p[2],
		RMSE:   math.Sqrt(best / float64(len(y)-m)),
		level:  level,
		trend:  trend,
		season: season,
		n:      len(y),
	}
}

// runHoltWinters initializes from the first two seasons and smooths from
// the start of the second one. The returned season is indexed by t mod m.
func runHoltWinters(y []float64, m int, alpha, beta, gamma float64) (level, trend float64, season []float64, sse float64) {
	first, second := y[:m], y[m:2*m]
	level = stat.Mean(first, nil)
	trend = (stat.Mean(second, nil) - level) / float64(m)

	// The first season's mean sits at t = (m-1)/2. Seasonal indices are the
	// deviations from that trend line and the level moves to t = m-1.
	center := float64(m-1) / 2
	season = make([]float64, m)
	for i := range season {
		season[i] = first[i] - (level + trend*(float64(i)-center))
	}
	level += trend * center

	for t := m; t < len(y); t++ {
		s := season[t%m]
		pred := level + trend + s
		e := y[t] - pred
		sse += e * e

		prev := level
		level = alpha*(y[t]-s) + (1-alpha)*(level+trend)
		trend = beta*(level-prev) + (1-beta)*trend
		season[t%m] = gamma*(y[t]-level) + (1-gamma)*s
	}
	return level, trend, season, sse
}

// minimize runs Nelder-Mead over unconstrained parameters mapped into (0, 1)
// with the logistic function and returns the mapped optimum.
func minimize(dim int, sse func([]float64) float64) []float64 {
	mapped := make([]float64, dim)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			for i := range x {
				mapped[i] = logistic(x[i])
			}
			return sse(mapped)
		},
	}

	// Start from alpha 0.3, beta 0.1, gamma 0.1
	init := []float64{logit(0.3), logit(0.1), logit(0.1)}[:dim]
	settings := &optimize.Settings{
		FuncEvaluations: 400 * dim,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-6, Relative: 1e-6, Iterations: 50},
	}

	// An error such as an exhausted evaluation budget still leaves the best
	// point found in res.
	best := make([]float64, dim)
	res, _ := optimize.Minimize(problem, init, settings, &optimize.NelderMead{SimplexSize: 0.5})
	if res == nil || floats.HasNaN(res.X) {
		copy(best, init)
	} else {
		copy(best, res.X)
	}
	for i := range best {
		best[i] = logistic(best[i])
	}
	return best
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
