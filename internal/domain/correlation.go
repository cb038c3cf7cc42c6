package domain

import "time"

// CorrelationStatus tags a correlation result so a genuine zero coefficient
// can never be mistaken for a could-not-compute sentinel.
type CorrelationStatus string

const (
	CorrelationComputed         CorrelationStatus = "computed"
	CorrelationInsufficientData CorrelationStatus = "insufficient_data"
	CorrelationZeroVariance     CorrelationStatus = "zero_variance"
)

// Correlation is the result of a Pearson computation between two price
// series. Coefficient and Confidence are zero unless Status is
// CorrelationComputed.
type Correlation struct {
	Status      CorrelationStatus
	Coefficient float64
	Confidence  float64
}

// Computed reports whether the correlation was actually calculated.
func (c Correlation) Computed() bool { return c.Status == CorrelationComputed }

// Direction classifies a correlation coefficient into a strength bucket.
type Direction string

const (
	DirectionStrongPositive Direction = "STRONG_POSITIVE"
	DirectionPositive       Direction = "POSITIVE"
	DirectionNeutral        Direction = "NEUTRAL"
	DirectionNegative       Direction = "NEGATIVE"
	DirectionStrongNegative Direction = "STRONG_NEGATIVE"
)

// CorrelationEdge is a pairwise correlation observation handed to the graph
// sink. The core never persists edges itself; the sink decides how.
type CorrelationEdge struct {
	ID          string
	SymbolA     string
	SymbolB     string
	Coefficient float64
	Confidence  float64
	Direction   Direction
	Timeframe   string
	ComputedAt  time.Time
}
