package market

import (
	"math"

	"github.com/ternarybob/fundscope/internal/models"
)

// GrowthSeries is the net income history in ascending period order
type GrowthSeries struct {
	Points []models.PeriodValue
	// CAGR is the compound annual growth rate in percent, nil when undefined
	CAGR *float64
}

// ComputeGrowth extracts net income from the income statement.
// Returns nil when the statement has no net income line.
func ComputeGrowth(income *models.Statement) *GrowthSeries {
	points := income.Series(models.LineNetIncome)
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	return &GrowthSeries{
		Points: points,
		CAGR:   CAGR(values),
	}
}

// CAGR returns (last/first)^(1/(n-1)) - 1 as a percentage.
// Undefined (nil) for fewer than two values, a first value <= 0,
// or a negative last value.
func CAGR(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	first := values[0]
	last := values[len(values)-1]
	if first <= 0 || last < 0 {
		return nil
	}

	periods := float64(len(values) - 1)
	growth := math.Pow(last/first, 1/periods) - 1
	return SafeScale(&growth, 100)
}
