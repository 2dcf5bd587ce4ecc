package tuner

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"

	"mcts-chess/engine"
)

const (
	MinScale = 1.0
	MaxScale = 5000.0
)

// ErrNoSamples is returned when fitting an empty dataset.
var ErrNoSamples = errors.New("no samples")

// logistic probability p = 1/(1+exp(-eval/scale)), the win chance implied by
// engine.EvalToResult.
func prob(eval, scale float64) float64 {
	z := eval / scale
	if z > 40 {
		return 1
	}
	if z < -40 {
		return 0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

// Loss is the mean squared error between the predicted win chance and the
// labels.
func Loss(samples []Sample, scale float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for i := range samples {
		d := prob(float64(samples[i].Material), scale) - samples[i].Label
		sum += d * d
	}
	return sum / float64(len(samples))
}

// FitScale finds the scale in [MinScale, MaxScale] that minimizes Loss,
// starting from initial. The search runs on log(scale) with Nelder-Mead.
func FitScale(samples []Sample, initial float64) (float64, float64, error) {
	if len(samples) == 0 {
		return 0, 0, ErrNoSamples
	}
	toScale := func(x float64) float64 {
		return engine.Clamp(math.Exp(x), MinScale, MaxScale)
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return Loss(samples, toScale(x[0])) },
	}
	start := []float64{math.Log(engine.Clamp(initial, MinScale, MaxScale))}
	settings := &optimize.Settings{
		FuncEvaluations: 2000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 50},
	}
	res, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{SimplexSize: 0.25})
	if err != nil {
		return 0, 0, err
	}
	scale := toScale(res.X[0])
	return scale, Loss(samples, scale), nil
}
