package http

import (
	"net/http"
	"strings"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	applog "kakeibo/internal/log"
)

type handlers struct {
	ledger *ledger.Service
}

// queryScope resolves the notebook, date filter and search parameters shared
// by list and dashboard endpoints. An absent notebook falls back to the
// active one.
func (h *handlers) queryScope(r *http.Request) (notebook string, filter core.DateFilter, search string) {
	q := r.URL.Query()
	notebook = strings.TrimSpace(q.Get("notebook"))
	if notebook == "" {
		if nb, ok := h.ledger.ActiveNotebook(); ok {
			notebook = nb.ID
		}
	}
	filter = core.DateFilter(q.Get("filter"))
	if filter == "" {
		filter = core.FilterAll
	}
	search = q.Get("search")
	return notebook, filter, search
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	notebook, filter, search := h.queryScope(r)
	txs, err := h.ledger.Query(notebook, filter, search)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	draft, err := parseDraft(payload)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	tx, err := h.ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTransactionCreated(r.Context(), tx.ID, tx.Amount.Cents, tx.Category, tx.Notebook)
	writeJSON(w, http.StatusCreated, tx)
}

func (h *handlers) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	draft, err := parseDraft(payload)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	tx, err := h.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeError(w, http.StatusConflict, "confirmation required: retry with ?confirm=true")
		return
	}
	ctx := ledger.WithConfirmation(r.Context(), true)
	if err := h.ledger.DeleteTransaction(ctx, r.PathValue("id")); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryPayload struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Categories())
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	cat, err := h.ledger.AddCategory(r.Context(), payload.Name, payload.Icon, payload.Color, core.CategoryType(payload.Type))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	cat, err := h.ledger.UpdateCategory(r.Context(), r.PathValue("id"), payload.Name, payload.Icon, payload.Color, core.CategoryType(payload.Type))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeError(w, http.StatusConflict, "confirmation required: retry with ?confirm=true")
		return
	}
	if err := h.ledger.RemoveCategory(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetPayload struct {
	Limit string `json:"limit"`
}

func (h *handlers) listBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Budgets())
}

func (h *handlers) setBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	limit, err := core.ParseMoney(payload.Limit)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	category := r.PathValue("category")
	if err := h.ledger.SetBudget(r.Context(), category, limit); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Money{category: limit})
}

type notebookPayload struct {
	Name string `json:"name"`
}

func (h *handlers) listNotebooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Notebooks())
}

func (h *handlers) createNotebook(w http.ResponseWriter, r *http.Request) {
	var payload notebookPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	nb, err := h.ledger.AddNotebook(r.Context(), payload.Name)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

func (h *handlers) selectNotebook(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.SelectNotebook(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.Notebooks())
}

// dashboardResponse joins period statistics with budget utilization, the
// data a dashboard view renders in one round trip.
type dashboardResponse struct {
	Stats   core.Stats                  `json:"stats"`
	Budgets map[string]core.Utilization `json:"budgets"`
}

// dashboard serves the stats for the requested scope next to the budget
// report. The report deliberately ignores the notebook and filter
// parameters: a budget is a ceiling on the current calendar month across
// all notebooks, so its utilization does not narrow with the view.
func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	notebook, filter, search := h.queryScope(r)
	stats, err := h.ledger.Stats(notebook, filter, search)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:   stats,
		Budgets: h.ledger.BudgetReport(),
	})
}
