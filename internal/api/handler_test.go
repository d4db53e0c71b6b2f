package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"medeasy/admin/internal/client"
	"medeasy/admin/internal/database"
	"medeasy/admin/internal/migrations"
	"medeasy/admin/internal/page"
	"medeasy/admin/internal/session"
)

// fakeRemote is an in-memory stand-in for the pharmacy API.
type fakeRemote struct {
	mu        sync.Mutex
	customers []map[string]any
	requests  []string
	failDel   bool
	auth      []string
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == "GET" && r.URL.Path == "/api/customers":
		json.NewEncoder(w).Encode(map[string]any{"customers": f.customers})
	case r.Method == "GET" && r.URL.Path == "/api/customers/search":
		var out []map[string]any
		for _, c := range f.customers {
			if strings.HasPrefix(c["name"].(string), r.URL.Query().Get("q")) {
				out = append(out, c)
			}
		}
		json.NewEncoder(w).Encode(out)
	case r.Method == "POST" && r.URL.Path == "/api/customers":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		body["id"] = len(f.customers) + 1
		f.customers = append(f.customers, body)
		w.WriteHeader(http.StatusCreated)
	case r.Method == "DELETE" && strings.HasPrefix(r.URL.Path, "/api/customers/"):
		if f.failDel {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"Customer has unpaid bills"}`))
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/customers/")
		kept := f.customers[:0]
		for _, c := range f.customers {
			if jsonID(c["id"]) != id {
				kept = append(kept, c)
			}
		}
		f.customers = kept
	case r.Method == "GET" && r.URL.Path == "/api/accounts":
		w.Write([]byte(`{"lowStockThreshold":10,"expiryAlertLeadTime":30}`))
	case r.Method == "GET" && r.URL.Path == "/api/medicine-stock/searchall":
		w.Write([]byte(`[{"id":1,"medicine":{"name":"Paracetamol"},"expiryDate":"2020-01-01","quantityAvailable":3,"price":"2"}]`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRemote) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if !strings.HasPrefix(r, "GET ") {
			out = append(out, r)
		}
	}
	return out
}

func jsonID(v any) string {
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}

type testServer struct {
	remote  *fakeRemote
	handler http.Handler
	cookie  *http.Cookie
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	remote := &fakeRemote{customers: []map[string]any{
		{"id": 1, "name": "John", "phone": "555"},
		{"id": 2, "name": "Mary"},
	}}
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	api, err := client.New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	h := New(session.NewStore(db, "test-secret"), api, page.Options{}, []string{"*"})
	ts := &testServer{remote: remote, handler: h.Router()}

	w := ts.do(t, "POST", "/session", url.Values{"token": {"remote-token"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected sign-in redirect, got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			ts.cookie = c
		}
	}
	if ts.cookie == nil {
		t.Fatal("expected a session cookie")
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "GET", "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestRequiresSession(t *testing.T) {
	ts := setupServer(t)
	ts.cookie = nil
	w := ts.do(t, "GET", "/customers", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/session" {
		t.Errorf("expected redirect to /session, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestSignInRejectsBlankToken(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "POST", "/session", url.Values{"token": {""}})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Token is required") {
		t.Errorf("unexpected response %d", w.Code)
	}
}

func TestListSendsBearerToken(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "GET", "/customers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "John") || !strings.Contains(body, "Mary") {
		t.Errorf("expected both customers in the table")
	}
	for _, a := range ts.remote.auth {
		if a != "Bearer remote-token" {
			t.Errorf("unexpected authorization header %q", a)
		}
	}
}

func TestSearchFragment(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "GET", "/customers/rows?q=Jo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "John") || strings.Contains(body, "Mary") {
		t.Errorf("expected only the matching customer, got %s", body)
	}
	if strings.Contains(body, "<html") {
		t.Error("fragment must not include the page layout")
	}
	last := ts.remote.requests[len(ts.remote.requests)-1]
	if last != "GET /api/customers/search?q=Jo" {
		t.Errorf("unexpected remote request %q", last)
	}
}

func TestCreateValidationSkipsRemote(t *testing.T) {
	ts := setupServer(t)
	ts.do(t, "GET", "/customers/new", nil)
	w := ts.do(t, "POST", "/customers", url.Values{"name": {" "}, "phone": {"1"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Name is required") {
		t.Error("expected the validation banner")
	}
	if m := ts.remote.mutations(); len(m) != 0 {
		t.Errorf("expected no remote mutations, got %v", m)
	}
}

func TestCreateThenList(t *testing.T) {
	ts := setupServer(t)
	ts.do(t, "GET", "/customers/new", nil)
	w := ts.do(t, "POST", "/customers", url.Values{"name": {"Nina"}, "phone": {"777"}, "address": {"12 Main St"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	w = ts.do(t, "GET", w.Header().Get("Location"), nil)
	body := w.Body.String()
	if !strings.Contains(body, "Nina") || !strings.Contains(body, "12 Main St") || !strings.Contains(body, "Customer created") {
		t.Errorf("expected the new customer and a success banner")
	}
}

func TestDeleteFlow(t *testing.T) {
	ts := setupServer(t)
	ts.do(t, "GET", "/customers", nil)

	w := ts.do(t, "GET", "/customers/1/delete", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `name="confirm" value="yes"`) {
		t.Fatalf("expected a confirmation page, got %d", w.Code)
	}

	ts.do(t, "POST", "/customers/1/delete", url.Values{})
	if m := ts.remote.mutations(); len(m) != 0 {
		t.Fatalf("unconfirmed delete reached the remote: %v", m)
	}

	w = ts.do(t, "POST", "/customers/1/delete", url.Values{"confirm": {"yes"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	body := ts.do(t, "GET", "/customers", nil).Body.String()
	if strings.Contains(body, "John") || !strings.Contains(body, "Customer deleted") {
		t.Errorf("expected John to be gone with a success banner")
	}
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	ts := setupServer(t)
	ts.remote.failDel = true
	ts.do(t, "GET", "/customers", nil)
	ts.do(t, "POST", "/customers/1/delete", url.Values{"confirm": {"yes"}})
	body := ts.do(t, "GET", "/customers", nil).Body.String()
	if !strings.Contains(body, "John") || !strings.Contains(body, "Customer has unpaid bills") {
		t.Errorf("expected the row to remain with the server message")
	}
}

func TestReadOnlyPages(t *testing.T) {
	ts := setupServer(t)
	if w := ts.do(t, "GET", "/stock/new", nil); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for creating stock, got %d", w.Code)
	}
	w := ts.do(t, "GET", "/stock", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Low Stock") || !strings.Contains(body, "Expired") {
		t.Errorf("expected derived badges in the stock table")
	}
	if w := ts.do(t, "GET", "/doctors", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown page, got %d", w.Code)
	}
}

func TestExport(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "GET", "/customers/export.xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip-based workbook")
	}
}

func TestImportCSV(t *testing.T) {
	ts := setupServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "customers.csv")
	part.Write([]byte("name,phone\nOmar,111\n,222\n"))
	mw.Close()

	req := httptest.NewRequest("POST", "/customers/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(ts.cookie)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Imported 1, skipped 1") || !strings.Contains(body, "Omar") {
		t.Errorf("unexpected import page")
	}
}

func TestLogout(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(t, "POST", "/session/logout", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	w = ts.do(t, "GET", "/customers", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/session" {
		t.Errorf("expected the old cookie to be rejected, got %d", w.Code)
	}
}
