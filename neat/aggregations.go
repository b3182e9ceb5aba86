package neat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// AggregationFunc combines the weighted incoming signals of a node.
// An empty input always aggregates to 0.
type AggregationFunc func(inputs []float64) float64

// AggregationFunctions maps function names to aggregation functions.
var AggregationFunctions = map[string]AggregationFunc{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"max":     AggregateMax,
	"min":     AggregateMin,
	"mean":    AggregateMean,
}

// GetAggregation retrieves an aggregation function by name.
func GetAggregation(name string) (AggregationFunc, error) {
	if fn, ok := AggregationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown aggregation function: %s", name)
}

func AggregateSum(inputs []float64) float64 {
	return floats.Sum(inputs)
}

func AggregateProduct(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Prod(inputs)
}

func AggregateMax(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Max(inputs)
}

func AggregateMin(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Min(inputs)
}

func AggregateMean(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Sum(inputs) / float64(len(inputs))
}
