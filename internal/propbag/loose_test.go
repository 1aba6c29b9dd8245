package propbag

import (
	"reflect"
	"testing"
)

func TestParseLoose(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
		ok    bool
	}{
		{
			name:  "simple pairs",
			input: "policy_number=AUTO-123, customer_id=C-9",
			want:  map[string]any{"policy_number": "AUTO-123", "customer_id": "C-9"},
			ok:    true,
		},
		{
			name:  "bracketed list value",
			input: "docs=[a.pdf, b.png], status=PENDING",
			want: map[string]any{
				"docs":   []any{"a.pdf", "b.png"},
				"status": "PENDING",
			},
			ok: true,
		},
		{
			name:  "quoted keys and values",
			input: `"make"='Honda', model="CR-V"`,
			want:  map[string]any{"make": "Honda", "model": "CR-V"},
			ok:    true,
		},
		{
			name:  "surrounding braces stripped",
			input: "{claim_type=accident}",
			want:  map[string]any{"claim_type": "accident"},
			ok:    true,
		},
		{
			name:  "empty bracketed list",
			input: "docs=[]",
			want:  map[string]any{"docs": []any{}},
			ok:    true,
		},
		{
			name:  "comma inside brackets does not split pairs",
			input: "areas=[hood, left door], severity=high",
			want: map[string]any{
				"areas":    []any{"hood", "left door"},
				"severity": "high",
			},
			ok: true,
		},
		{name: "not the dialect", input: "just some prose with no pairs", ok: false},
		{name: "empty input", input: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLoose(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseLoose(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseLoose(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitTop(t *testing.T) {
	got := splitTop(`a=1, b=[x, y], c="v, w"`, ',')
	want := []string{"a=1", " b=[x, y]", ` c="v, w"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitTop = %#v, want %#v", got, want)
	}
}
