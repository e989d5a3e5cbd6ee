package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/kvstore/memory"
	"kakeibo/internal/ledger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := ledger.New(memory.New(),
		ledger.WithNow(func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }),
		ledger.WithConfirmer(ledger.ContextConfirmer{}),
	)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := NewServer(":0", svc)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"45.50","category":"food","date":"2024-03-10","note":"dinner","paymentMethod":"card"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Transaction](t, rec)
	if created.Amount.Cents != 4550 || created.Notebook != "default" {
		t.Errorf("created = %+v", created)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?filter=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	txs := decode[[]core.Transaction](t, rec)
	if len(txs) != 1 || txs[0].ID != created.ID {
		t.Errorf("list = %+v", txs)
	}
}

func TestCreateTransactionErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", http.StatusUnprocessableEntity},
		{"invalid amount", `{"type":"expense","amount":"-5","category":"food","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"type":"expense","amount":"5.00","category":"nope","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"expense","amount":"5.00","category":"food","date":"soon"}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"type":"expense","amount":"5.00","category":"food","date":"2024-03-10","extra":1}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"10.00","category":"food","date":"2024-03-10"}`)
	created := decode[core.Transaction](t, rec)

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/"+created.ID,
		`{"type":"expense","amount":"12.00","category":"transport","date":"2024-03-11"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[core.Transaction](t, rec)
	if updated.ID != created.ID || updated.Amount.Cents != 1200 || updated.Category != "transport" {
		t.Errorf("updated = %+v", updated)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/missing",
		`{"type":"expense","amount":"12.00","category":"food","date":"2024-03-11"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", rec.Code)
	}
}

func TestDeleteTransactionRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"10.00","category":"food","date":"2024-03-10"}`)
	created := decode[core.Transaction](t, rec)

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID+"?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirmed delete = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", "")
	if txs := decode[[]core.Transaction](t, rec); len(txs) != 0 {
		t.Errorf("transactions after delete = %+v", txs)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/categories", "")
	if cats := decode[[]core.Category](t, rec); len(cats) != 10 {
		t.Fatalf("seeded categories = %d, want 10", len(cats))
	}

	rec = doJSON(t, s, http.MethodPost, "/api/categories",
		`{"name":"Pets","icon":"🐕","color":"#a16207","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category = %d, body %s", rec.Code, rec.Body.String())
	}
	cat := decode[core.Category](t, rec)

	rec = doJSON(t, s, http.MethodPut, "/api/categories/"+cat.ID,
		`{"name":"Pet care","icon":"🐕","color":"#a16207","type":"expense"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update category = %d", rec.Code)
	}

	// In-use guard: food has a transaction, delete must 409.
	doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"5.00","category":"food","date":"2024-03-10"}`)
	rec = doJSON(t, s, http.MethodDelete, "/api/categories/food?confirm=true", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("delete in-use category = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+cat.ID+"?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete unused category = %d, want 204", rec.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/budgets/food", `{"limit":"100.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPut, "/api/budgets/food", `{"limit":"0"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero budget = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budgets", "")
	budgets := decode[map[string]core.Money](t, rec)
	if budgets["food"].Cents != 10000 {
		t.Errorf("budgets = %v", budgets)
	}
}

func TestNotebookEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/notebooks", `{"name":"Business"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create notebook = %d", rec.Code)
	}
	nb := decode[core.Notebook](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/notebooks/"+nb.ID+"/select", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("select notebook = %d", rec.Code)
	}
	books := decode[[]core.Notebook](t, rec)
	for _, b := range books {
		if b.ID == nb.ID && !b.Active {
			t.Error("selected notebook not active")
		}
		if b.ID == "default" && b.Active {
			t.Error("default notebook still active")
		}
	}

	rec = doJSON(t, s, http.MethodPost, "/api/notebooks/missing/select", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("select missing notebook = %d, want 422", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPut, "/api/budgets/food", `{"limit":"100.00"}`)
	doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"120.00","category":"food","date":"2024-03-01"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?filter=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d, body %s", rec.Code, rec.Body.String())
	}
	dash := decode[dashboardResponse](t, rec)
	if dash.Stats.Expense.Cents != 12000 || dash.Stats.Balance.Cents != -12000 {
		t.Errorf("stats = %+v", dash.Stats)
	}
	if dash.Stats.ByCategory["food"].Cents != 12000 {
		t.Errorf("breakdown = %v", dash.Stats.ByCategory)
	}
	u, ok := dash.Budgets["food"]
	if !ok || u.Status != core.BudgetOver {
		t.Errorf("budget utilization = %+v", dash.Budgets)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?filter=yesterday", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid filter = %d, want 422", rec.Code)
	}

	// Budgets stay month-scoped even when the stats view narrows: the
	// March 1 expense falls outside filter=today but still counts against
	// the ceiling.
	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?filter=today", "")
	dash = decode[dashboardResponse](t, rec)
	if dash.Stats.Expense.Cents != 0 {
		t.Errorf("today stats = %+v", dash.Stats)
	}
	if u, ok := dash.Budgets["food"]; !ok || u.Status != core.BudgetOver {
		t.Errorf("budget utilization under today filter = %+v", dash.Budgets)
	}
}

func TestResponseSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("CSP = %q, want default-src 'none'", csp)
	}
	if strings.Contains(csp, "unpkg.com") || strings.Contains(csp, "script-src") {
		t.Errorf("CSP %q allows script sources on a JSON API", csp)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options missing")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}
	if !strings.HasPrefix(rec.Header().Get("X-Request-ID"), "req_") {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
}
