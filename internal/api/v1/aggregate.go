package v1

import (
	"github.com/shopspring/decimal"
)

// PopularityRow is one (value, count) pair of an aggregate.
type PopularityRow struct {
	Value string `json:"value"`
	Count int64  `json:"count"`

	// Percent is Count as a share of the result's Total, rounded to two places.
	Percent decimal.Decimal `json:"percent"`
}

// AggregateResult is the popularity breakdown of one dimension over a window.
// Rows are ordered by count descending, ties broken by value ascending.
type AggregateResult struct {
	Dimension  Dimension       `json:"dimension"`
	WindowDays int             `json:"window_days"`
	Rows       []PopularityRow `json:"rows"`
	Total      int64           `json:"total"`
}

// Empty reports whether the result has no active devices.
func (r *AggregateResult) Empty() bool {
	return r == nil || r.Total == 0
}

// Top returns a copy of r truncated to the first n rows. n <= 0 keeps all rows.
func (r *AggregateResult) Top(n int) *AggregateResult {
	if r == nil {
		return nil
	}
	out := *r
	if n > 0 && len(r.Rows) > n {
		out.Rows = r.Rows[:n]
	}
	return &out
}

// FieldInfo is the detail view of all devices sharing one dimension value.
type FieldInfo struct {
	Field      Dimension                     `json:"field"`
	Value      string                        `json:"value"`
	WindowDays int                           `json:"window_days"`
	Breakdown  map[Dimension][]PopularityRow `json:"breakdown"`
	Total      int64                         `json:"total"`
}

// SharePercent returns count/total*100 rounded to two decimal places.
func SharePercent(count, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(count).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2)
}
