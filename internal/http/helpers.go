package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeStoreError maps storage errors to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseWindow reads from/to query parameters, defaulting to the month of now.
func parseWindow(r *http.Request, now core.Date) (core.Window, error) {
	w := core.MonthWindow(now)

	if v := r.URL.Query().Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Window{}, err
		}
		w.From = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Window{}, err
		}
		w.To = d
	}
	if w.To.Before(w.From.Time) {
		return core.Window{}, core.ErrInvalidDate
	}
	return w, nil
}

// parseMonth reads the month query parameter (first day of a month),
// defaulting to now.
func parseMonth(r *http.Request, now core.Date) (core.Date, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return now, nil
	}
	return core.ParseDate(v)
}

func parseSortField(v string) (ledger.SortField, bool) {
	switch ledger.SortField(v) {
	case "", ledger.SortByDate:
		return ledger.SortByDate, true
	case ledger.SortByAmount:
		return ledger.SortByAmount, true
	case ledger.SortByBalance:
		return ledger.SortByBalance, true
	default:
		return "", false
	}
}
