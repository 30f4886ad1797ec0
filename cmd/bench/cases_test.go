package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSplitSQL(t *testing.T) {
	sql := "-- header\nCREATE TABLE IF NOT EXISTS a (id TEXT);\n\nCREATE INDEX IF NOT EXISTS a_idx ON a (id);\n"
	got := splitSQL(sql)
	want := []string{
		"CREATE TABLE IF NOT EXISTS a (id TEXT)",
		"CREATE INDEX IF NOT EXISTS a_idx ON a (id)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSQL = %q, want %q", got, want)
	}
}

func TestExtractTables_Migration(t *testing.T) {
	tables, err := extractTables("../../migrations/0001_pricing_presets.sql")
	if err != nil {
		t.Fatalf("extractTables: %v", err)
	}
	if !reflect.DeepEqual(tables, []string{"pricing_presets"}) {
		t.Errorf("tables = %v", tables)
	}
}

func TestHTTPCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL})
	ctx := context.Background()

	if res := httpCaseMethod("ok", http.MethodGet, srv.URL+"/", nil, []int{200}).Run(ctx, r); res.Status != "PASS" {
		t.Errorf("expected PASS, got %+v", res)
	}
	if res := httpCaseMethod("404 expected", http.MethodGet, srv.URL+"/missing", nil, []int{404}).Run(ctx, r); res.Status != "PASS" {
		t.Errorf("expected PASS, got %+v", res)
	}
	if res := httpCase("wrong status", srv.URL+"/missing", map[string]any{}, []int{200}).Run(ctx, r); res.Status != "FAIL" {
		t.Errorf("expected FAIL, got %+v", res)
	}
}

func TestWithField_DoesNotMutate(t *testing.T) {
	out := withField(workedExample, "service", "expedited")
	if out["service"] != "expedited" || workedExample["service"] != "standard" {
		t.Errorf("withField mutated the source: %v / %v", out["service"], workedExample["service"])
	}
}
