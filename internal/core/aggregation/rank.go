package aggregation

import (
	"sort"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
)

// Rank orders counts by count descending, then value ascending, and fills
// each row's percent share of total.
func Rank(counts map[string]int64) ([]v1.PopularityRow, int64) {
	rows := make([]v1.PopularityRow, 0, len(counts))
	var total int64
	for value, count := range counts {
		rows = append(rows, v1.PopularityRow{Value: value, Count: count})
		total += count
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Value < rows[j].Value
	})

	fillPercent(rows, total)
	return rows, total
}

// rowsFromGroups converts pre-ordered database groups into rows.
func rowsFromGroups(groups []storage.GroupCount) ([]v1.PopularityRow, int64) {
	rows := make([]v1.PopularityRow, 0, len(groups))
	var total int64
	for _, g := range groups {
		rows = append(rows, v1.PopularityRow{Value: g.Value, Count: g.Count})
		total += g.Count
	}
	fillPercent(rows, total)
	return rows, total
}

func fillPercent(rows []v1.PopularityRow, total int64) {
	for i := range rows {
		rows[i].Percent = v1.SharePercent(rows[i].Count, total)
	}
}
