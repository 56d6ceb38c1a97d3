package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		expr string
		want Filter
	}{
		{"validated = true", Filter{Field: "validated", Op: OpEq, Value: "true"}},
		{"tags contains [cve]", Filter{Field: "tags", Op: OpContains, Value: "[cve]"}},
		{"name ends_with .example.com", Filter{Field: "name", Op: OpSuffix, Value: ".example.com"}},
		{"last_scanned is_null", Filter{Field: "last_scanned", Op: OpIsNull}},
		{`records ~ "CNAME edge.example.net."`, Filter{Field: "records", Op: OpContains, Value: "CNAME edge.example.net."}},
		{"created_at > 2026-01-01", Filter{Field: "created_at", Op: OpGt, Value: "2026-01-01"}},
	}

	for _, test := range tests {
		got, err := ParseFilter(test.expr)
		if err != nil {
			t.Fatalf("ParseFilter(%q) error: %v", test.expr, err)
		}
		if got != test.want {
			t.Errorf("ParseFilter(%q) = %+v, want %+v", test.expr, got, test.want)
		}
	}
}

func TestParseFilterRejects(t *testing.T) {
	for _, expr := range []string{
		"",
		"name",
		"name =",
		"id = 1",
		"name regex .*",
		"validated = maybe",
		"validated contains t",
		"validated > true",
		"1=1; DROP TABLE targets",
	} {
		if _, err := ParseFilter(expr); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("ParseFilter(%q) error = %v, want ErrInvalidFilter", expr, err)
		}
	}
}

func TestParseWhere(t *testing.T) {
	got, err := ParseWhere("validated = true AND tags contains [high]")
	if err != nil {
		t.Fatalf("ParseWhere error: %v", err)
	}
	want := []Filter{
		{Field: "validated", Op: OpEq, Value: "true"},
		{Field: "tags", Op: OpContains, Value: "[high]"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseWhere = %+v, want %+v", got, want)
	}

	none, err := ParseWhere("  ")
	if err != nil || none != nil {
		t.Fatalf("blank where = %v, %v", none, err)
	}
}

func TestParseWhereKeepsAndInsideValues(t *testing.T) {
	tests := []struct {
		expr string
		want []Filter
	}{
		{
			expr: "tags contains [sql and xss]",
			want: []Filter{{Field: "tags", Op: OpContains, Value: "[sql and xss]"}},
		},
		{
			expr: `name prefix "dev and qa" and validated = false`,
			want: []Filter{
				{Field: "name", Op: OpPrefix, Value: "dev and qa"},
				{Field: "validated", Op: OpEq, Value: "false"},
			},
		},
		{
			expr: "tags contains [a][b and c] and records contains CNAME",
			want: []Filter{
				{Field: "tags", Op: OpContains, Value: "[a][b and c]"},
				{Field: "records", Op: OpContains, Value: "CNAME"},
			},
		},
	}
	for _, tt := range tests {
		got, err := ParseWhere(tt.expr)
		if err != nil {
			t.Fatalf("ParseWhere(%q) error: %v", tt.expr, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseWhere(%q) = %+v, want %+v", tt.expr, got, tt.want)
		}
	}
}
