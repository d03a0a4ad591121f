package ledger

import (
	"encoding/csv"
	"strings"

	"bilancio/internal/core"
)

// FormatCSV renders rows as a CSV document in chronological order, one line
// per ledger row plus a header. Callers own any locale-specific formatting;
// amounts here are plain two-decimal numbers.
func FormatCSV(rows []Row) (string, error) {
	ordered := SortRows(rows, SortByDate, false)

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"id", "date", "description", "category", "direction", "amount", "balance"}); err != nil {
		return "", err
	}
	for _, r := range ordered {
		record := []string{
			r.ID,
			r.Date.ISO(),
			r.Description,
			r.Category,
			string(r.Direction),
			r.Amount.String(),
			core.Money{Cents: abs(r.Balance)}.String(),
		}
		if r.Balance < 0 {
			record[6] = "-" + record[6]
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
