package neat

import (
	"fmt"
	"math"
)

// ActivationFunc maps a node's summed input to its output.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps function names to activation functions.
// Configuration refers to activations by these names.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"abs":      Absolute,
	"sine":     Sine,
	"hat":      Hat,
	"square":   Square,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the logistic function with steepness 4.9, as in the original NEAT experiments.
func Sigmoid(x float64) float64 {
	x = clamp(4.9*x, -60, 60)
	return 1.0 / (1.0 + math.Exp(-x))
}

func Tanh(x float64) float64 { return math.Tanh(x) }

func ReLU(x float64) float64 { return math.Max(0, x) }

func Identity(x float64) float64 { return x }

// Clamped clamps the output between -1 and 1.
func Clamped(x float64) float64 { return clamp(x, -1.0, 1.0) }

func Gaussian(x float64) float64 {
	x = clamp(x, -3.4, 3.4)
	return math.Exp(-5.0 * x * x)
}

func Absolute(x float64) float64 { return math.Abs(x) }

func Sine(x float64) float64 { return math.Sin(x) }

// Hat is a triangular pulse centered at 0.
func Hat(x float64) float64 { return math.Max(0.0, 1.0-math.Abs(x)) }

func Square(x float64) float64 { return x * x }
