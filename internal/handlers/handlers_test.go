package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"subcatalog/internal/catalog"
	"subcatalog/internal/config"
	"subcatalog/internal/database"
	"subcatalog/internal/models"
	"subcatalog/internal/reconcile"

	"github.com/labstack/echo/v4"
)

type staticResolver map[string][]string

func (s staticResolver) Resolve(_ context.Context, names []string) ([]string, error) {
	var lines []string
	for _, name := range names {
		lines = append(lines, s[name]...)
	}
	return lines, nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "handlers_test.sqlite3"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	logger := log.New(io.Discard, "", 0)
	store := catalog.NewStore(db, logger)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	resolver := staticResolver{"api.example.com": {"api.example.com. A 8.8.8.8", "api.example.com. A 10.0.0.1"}}
	engine := reconcile.NewEngine(&config.Config{}, store, resolver, nil, logger)

	e := echo.New()
	RegisterRoutes(e.Group("/api"), engine)
	return e
}

func do(e *echo.Echo, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestImportVerifyAndQuery(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/targets", echo.MIMEApplicationJSON, `{"names":["api.example.com","www.example.com","api.example.com"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body)
	}
	var imported reconcile.ImportSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &imported); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if imported.Inserted != 2 || imported.Duplicates != 1 {
		t.Fatalf("unexpected import summary %+v", imported)
	}

	rec = do(e, http.MethodPost, "/api/verify", echo.MIMEApplicationJSON, `{"mode":"unverified"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(e, http.MethodGet, "/api/targets?where="+url.QueryEscape("validated = true"), "", "")
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode names: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"api.example.com"}) {
		t.Fatalf("verified names = %v", names)
	}

	rec = do(e, http.MethodGet, "/api/targets/api.example.com", "", "")
	var target models.Target
	if err := json.Unmarshal(rec.Body.Bytes(), &target); err != nil {
		t.Fatalf("decode target: %v", err)
	}
	if target.Records != "A 8.8.8.8" || !target.IsValidated() {
		t.Fatalf("unexpected target %+v", target)
	}
}

func TestImportTagsText(t *testing.T) {
	e := newTestServer(t)

	body := "[tag1] [tag2] example.com\n[tag3] https://test.org\n[tag4] invalid-entry\n"
	rec := do(e, http.MethodPost, "/api/tags", echo.MIMETextPlain, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("tags status = %d: %s", rec.Code, rec.Body)
	}
	var sum reconcile.TagSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Parsed != 2 || sum.Dropped != 1 || sum.Merge.Created != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	rec = do(e, http.MethodGet, "/api/stats", "", "")
	if !strings.Contains(rec.Body.String(), `"targets":2`) {
		t.Fatalf("stats = %s", rec.Body)
	}
}

func TestImportTargetsExtract(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/targets?extract=true", echo.MIMETextPlain, "https://a.example.com/login\ninvalidurl\n")
	var sum reconcile.ImportSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Inserted != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestBadRequests(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/api/targets?where=" + url.QueryEscape("1=1 OR 1=1"), "", http.StatusBadRequest},
		{http.MethodGet, "/api/targets/missing.example.com", "", http.StatusNotFound},
		{http.MethodPost, "/api/verify", `{"mode":"sometimes"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/verify", `{"mode":"all","date":"2026-10-15"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/verify", `{"mode":"unverified","date":"15/10/2026"}`, http.StatusBadRequest},
	}
	for _, test := range tests {
		rec := do(e, test.method, test.target, echo.MIMEApplicationJSON, test.body)
		if rec.Code != test.want {
			t.Errorf("%s %s = %d, want %d (%s)", test.method, test.target, rec.Code, test.want, rec.Body)
		}
	}
}
