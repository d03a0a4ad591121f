package http

import (
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

var errUnknownSort = errors.New("unknown sort field")

// isValidationError reports whether the error came from input validation
// rather than from storage.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidLimit,
		core.ErrEmptyDescription,
		core.ErrInvalidDirection,
		core.ErrInvalidFrequency,
		core.ErrEndBeforeStart,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

type oneOffRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Direction   string `json:"direction"`
	Date        string `json:"date"`
}

func (r oneOffRequest) input() services.OneOffInput {
	return services.OneOffInput{
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		Direction:   core.Direction(r.Direction),
		Date:        r.Date,
	}
}

type templateRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Direction   string `json:"direction"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (r templateRequest) input() services.TemplateInput {
	return services.TemplateInput{
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		Direction:   core.Direction(r.Direction),
		Frequency:   core.Frequency(r.Frequency),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

type budgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleCreateOneOff(w http.ResponseWriter, r *http.Request) {
	var req oneOffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := s.entries.CreateOneOff(r.Context(), req.input())
	if err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, map[string]string{"id": e.ID})
}

func (s *Server) handleUpdateOneOff(w http.ResponseWriter, r *http.Request) {
	var req oneOffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.entries.UpdateOneOff(r.Context(), r.PathValue("id"), req.input()); err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := s.entries.CreateTemplate(r.Context(), req.input())
	if err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.entries.UpdateTemplate(r.Context(), r.PathValue("id"), req.input()); err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

type budgetJSON struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Limit      string `json:"limit"`
	LimitCents int64  `json:"limit_cents"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]budgetJSON, len(budgets))
	for i, b := range budgets {
		out[i] = budgetJSON{
			ID:         b.ID,
			Category:   b.Category,
			Limit:      b.Limit.String(),
			LimitCents: b.Limit.Cents,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := s.entries.CreateBudget(r.Context(), services.BudgetInput{Category: req.Category, Limit: req.Limit})
	if err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, map[string]string{"id": b.ID})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.entries.UpdateBudget(r.Context(), r.PathValue("id"), services.BudgetInput{Category: req.Category, Limit: req.Limit}); err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		s.writeWriteError(w, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

type settingsJSON struct {
	AutoGenerateRecurring bool `json:"auto_generate_recurring"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsJSON{AutoGenerateRecurring: settings.AutoGenerateRecurring})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.entries.SetAutoGenerateRecurring(r.Context(), req.AutoGenerateRecurring); err != nil {
		writeStoreError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) writeWriteError(w http.ResponseWriter, err error) {
	if isValidationError(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeStoreError(w, err)
}
