package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGetSendsCredential(t *testing.T) {
	var gotAuth, gotCookie, gotQuery, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ck, err := r.Cookie("sid"); err == nil {
			gotCookie = ck.Value
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"name":"John"}]`))
	})

	cred := Credential{Token: "tok", Cookies: []*http.Cookie{{Name: "sid", Value: "abc"}}}
	var out []map[string]string
	if err := c.Get(context.Background(), cred, "/api/customers/search", url.Values{"q": {"Jo"}}, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotCookie != "abc" {
		t.Errorf("expected cookie to be forwarded, got %q", gotCookie)
	}
	if gotPath != "/api/customers/search" || gotQuery != "Jo" {
		t.Errorf("unexpected request %s?q=%s", gotPath, gotQuery)
	}
	if len(out) != 1 || out[0]["name"] != "John" {
		t.Errorf("unexpected body %v", out)
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Name already exists"}`, "Name already exists"},
		{"error field", http.StatusConflict, `{"error":"duplicate"}`, "duplicate"},
		{"plain text", http.StatusInternalServerError, `boom`, "fallback"},
		{"empty", http.StatusNotFound, ``, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			err := c.Delete(context.Background(), Credential{}, "/api/customers/1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, apiErr.Status)
			}
			if got := Message(err, "fallback"); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPostEncodesBody(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})
	if err := c.Post(context.Background(), Credential{}, "/api/customers", map[string]string{"name": "Ann"}, nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got["name"] != "Ann" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestTransportFailureUsesFallback(t *testing.T) {
	c, err := New("http://127.0.0.1:1", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Get(context.Background(), Credential{}, "/api/customers", nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := Message(err, "Failed to load"); got != "Failed to load" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestAccountsDefaultsOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	settings, err := c.Accounts(context.Background(), Credential{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if settings.LowStockThreshold != 10 || settings.ExpiryLeadDays != 30 {
		t.Errorf("expected defaults, got %+v", settings)
	}
}

func TestAccounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lowStockThreshold":3,"expiryAlertLeadTime":45}`))
	})
	settings, err := c.Accounts(context.Background(), Credential{})
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if settings.LowStockThreshold != 3 || settings.ExpiryLeadDays != 45 {
		t.Errorf("unexpected settings %+v", settings)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api", 0); err == nil {
		t.Error("expected an error for a relative base url")
	}
}
