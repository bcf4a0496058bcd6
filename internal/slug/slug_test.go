package slug

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "go-concurrency-guide", "go-concurrency-guide"},
		{"uppercase", "Go-Concurrency", "go-concurrency"},
		{"surrounding space", "  my-slug  ", "my-slug"},
		{"invalid chars dropped", "best_slug!#2024", "bestslug2024"},
		{"hyphen runs collapsed", "a--b---c", "a-b-c"},
		{"edge hyphens trimmed", "--hello--", "hello"},
		{"nothing survives", "!!!", ""},
		{"over max length", strings.Repeat("a", MaxLength+1), ""},
		{"exactly max length", strings.Repeat("a", MaxLength), strings.Repeat("a", MaxLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"good-slug", true},
		{"a", true},
		{"123", true},
		{strings.Repeat("x", MaxLength), true},
		{"", false},
		{"Bad Slug", false},
		{"UPPER", false},
		{"with_underscore", false},
		{"café", false},
		{strings.Repeat("x", MaxLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
