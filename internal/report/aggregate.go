// Package report merges, filters and renders notification lists.
package report

import (
	"sort"

	"github.com/good-yellow-bee/wtc/internal/models"
)

// Merge concatenates the per-instance lists and sorts the result newest
// first. Duplicates across instances are kept.
func Merge(lists ...[]*models.Notification) []*models.Notification {
	var total int
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]*models.Notification, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged
}
