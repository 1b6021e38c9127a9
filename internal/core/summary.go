package core

import "sort"

// SummarySlice is one chart-ready group: a category title, its month total,
// its share of the grand total, and a stable slice color.
type SummarySlice struct {
	Title      string
	Amount     Money
	Percentage float64
	Color      string
}

// MonthSummary aggregates one kind of transaction for a specific year+month.
type MonthSummary struct {
	Year   int
	Month  int // 1-12
	Kind   Kind
	Total  Money
	Slices []SummarySlice
	Items  []Transaction // flat detail list, store order preserved
}

// chartPalette mirrors the fixed slice colors the mobile charts use. Slices
// beyond the palette wrap around.
var chartPalette = []string{
	"#ff3b30", "#34c759", "#007aff", "#ff9500",
	"#af52de", "#5ac8fa", "#ffcc00", "#8e8e93",
}

// Summarize groups the given month's transactions by title, sums each group,
// and computes every group's percentage of the month total. When the total is
// zero all percentages are zero. Slices are ordered by descending amount, ties
// broken by title for determinism.
func Summarize(year, month int, kind Kind, txns []Transaction) MonthSummary {
	sum := MonthSummary{Year: year, Month: month, Kind: kind, Items: txns}

	byTitle := make(map[string]int64)
	var order []string
	for _, t := range txns {
		if _, seen := byTitle[t.Title]; !seen {
			order = append(order, t.Title)
		}
		byTitle[t.Title] += t.Amount.Satang
		sum.Total.Satang += t.Amount.Satang
	}

	sort.Slice(order, func(i, j int) bool {
		if byTitle[order[i]] != byTitle[order[j]] {
			return byTitle[order[i]] > byTitle[order[j]]
		}
		return order[i] < order[j]
	})

	for i, title := range order {
		pct := 0.0
		if sum.Total.Satang > 0 {
			pct = float64(byTitle[title]) / float64(sum.Total.Satang) * 100
		}
		sum.Slices = append(sum.Slices, SummarySlice{
			Title:      title,
			Amount:     Money{Satang: byTitle[title]},
			Percentage: pct,
			Color:      chartPalette[i%len(chartPalette)],
		})
	}

	return sum
}
