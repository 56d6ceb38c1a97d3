package records

import (
	"reflect"
	"testing"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		want     map[string][]string
		filtered int
	}{
		{
			name: "filters internal addresses",
			lines: []string{
				"example.com. A 192.168.1.1",
				"example.com. A 8.8.8.8",
				"example.com. AAAA 2001:4860:4860::8888",
				"test.org. A 10.0.0.1",
				"test.org. A 9.9.9.9",
			},
			want: map[string][]string{
				"example.com": {"A 8.8.8.8", "AAAA 2001:4860:4860::8888"},
				"test.org":    {"A 9.9.9.9"},
			},
			filtered: 2,
		},
		{
			name:  "empty input",
			lines: nil,
			want:  map[string][]string{},
		},
		{
			name: "cname kept in order",
			lines: []string{
				"example.com. CNAME alias.example.com.",
				"example.com. A 8.8.8.8",
				"test.org. CNAME alias.test.org.",
				"test.org. A 9.9.9.9",
			},
			want: map[string][]string{
				"example.com": {"CNAME alias.example.com.", "A 8.8.8.8"},
				"test.org":    {"CNAME alias.test.org.", "A 9.9.9.9"},
			},
		},
		{
			name: "cname survives when addresses are internal",
			lines: []string{
				"example.com. A 192.168.1.1",
				"example.com. CNAME alias.example.com.",
				"example.com. A 8.8.8.8",
				"test.org. CNAME alias.test.org.",
				"test.org. A 10.0.0.1",
			},
			want: map[string][]string{
				"example.com": {"CNAME alias.example.com.", "A 8.8.8.8"},
				"test.org":    {"CNAME alias.test.org."},
			},
			filtered: 2,
		},
		{
			name: "duplicates collapse and only-internal domains vanish",
			lines: []string{
				"example.com. A 8.8.8.8",
				"example.com A 8.8.8.8",
				"internal.example.com. A 10.1.1.1",
			},
			want: map[string][]string{
				"example.com": {"A 8.8.8.8"},
			},
			filtered: 1,
		},
		{
			name: "unparsable address is kept",
			lines: []string{
				"odd.example.com. A not-an-ip",
			},
			want: map[string][]string{
				"odd.example.com": {"A not-an-ip"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Aggregate(test.lines, nil)
			if !reflect.DeepEqual(got.Records, test.want) {
				t.Fatalf("Aggregate = %v, want %v", got.Records, test.want)
			}
			if got.Filtered != test.filtered {
				t.Errorf("Filtered = %d, want %d", got.Filtered, test.filtered)
			}
		})
	}
}

func TestAggregateSkipsMalformed(t *testing.T) {
	got := Aggregate([]string{
		"broken-line",
		"",
		"example.com. A",
		"example.com. A 1.1.1.1",
	}, nil)

	if got.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", got.Skipped)
	}
	if want := []string{"A 1.1.1.1"}; !reflect.DeepEqual(got.Records["example.com"], want) {
		t.Errorf("records = %v, want %v", got.Records["example.com"], want)
	}
}
