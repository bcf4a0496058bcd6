package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "https://example.com/page", "https://example.com/page"},
		{"missing scheme", "example.com/page", "https://example.com/page"},
		{"http kept", "http://example.com", "http://example.com"},
		{"tracking stripped", "https://example.com/a?utm_source=x&id=42", "https://example.com/a?id=42"},
		{"public ip allowed", "https://8.8.8.8/path", "https://8.8.8.8/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)
			if err != nil {
				t.Fatalf("Validate(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateIdempotent(t *testing.T) {
	inputs := []string{
		"example.com/a?utm_source=x&id=42",
		"https://example.com/path?q=go&fbclid=abc",
		"news.ycombinator.com",
	}
	for _, input := range inputs {
		first, err := Validate(input)
		if err != nil {
			t.Fatalf("Validate(%q) returned error: %v", input, err)
		}
		second, err := Validate(first)
		if err != nil {
			t.Fatalf("Validate(%q) returned error on second pass: %v", first, err)
		}
		if first != second {
			t.Errorf("Validate not idempotent: %q then %q", first, second)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
	}{
		{"empty", "", KindEmpty},
		{"ftp scheme", "ftp://example.com/file", KindBadScheme},
		{"javascript scheme", "javascript:alert(1)", KindBadScheme},
		{"no host", "https:///path", KindMissingHost},
		{"localhost", "http://localhost:8080/admin", KindLocalhost},
		{"loopback ip", "http://127.0.0.1/", KindPrivateIP},
		{"loopback range", "http://127.8.8.8/", KindPrivateIP},
		{"zeros", "http://0.0.0.0/", KindLocalhost},
		{"private 10", "http://10.0.0.5/secrets", KindPrivateIP},
		{"private 192", "http://192.168.1.1/", KindPrivateIP},
		{"private 172", "http://172.16.0.1/", KindPrivateIP},
		{"link local", "http://169.254.169.254/latest/meta-data", KindPrivateIP},
		{"ipv6 loopback", "http://[::1]/", KindPrivateIP},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength), KindTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.input)
			if err == nil {
				t.Fatalf("Validate(%q) should fail", tt.input)
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Validate(%q) error type = %T, want *Error", tt.input, err)
			}
			if verr.Kind != tt.kind {
				t.Errorf("Validate(%q) kind = %q, want %q", tt.input, verr.Kind, tt.kind)
			}
		})
	}
}

func TestRemoveTrackingParameters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips utm family",
			input: "https://example.com/a?utm_source=tw&utm_medium=social&utm_campaign=launch",
			want:  "https://example.com/a",
		},
		{
			name:  "keeps functional params",
			input: "https://example.com/watch?v=abc123&t=42",
			want:  "https://example.com/watch?v=abc123&t=42",
		},
		{
			name:  "mixed keeps order",
			input: "https://example.com/s?q=go&fbclid=xyz&page=2&gclid=123",
			want:  "https://example.com/s?q=go&page=2",
		},
		{
			name:  "repeated values survive",
			input: "https://example.com/f?filter=new&filter=sale&ref=home",
			want:  "https://example.com/f?filter=new&filter=sale",
		},
		{
			name:  "encoded values untouched",
			input: "https://example.com/s?q=caf%C3%A9+au+lait&utm_term=x",
			want:  "https://example.com/s?q=caf%C3%A9+au+lait",
		},
		{
			name:  "case insensitive names",
			input: "https://example.com/a?ID=7&UTM_SOURCE=x",
			want:  "https://example.com/a?ID=7",
		},
		{
			name:  "no query",
			input: "https://example.com/plain",
			want:  "https://example.com/plain",
		},
		{
			name:  "fragment preserved",
			input: "https://example.com/doc?utm_source=x#section-2",
			want:  "https://example.com/doc#section-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveTrackingParameters(tt.input)
			if got != tt.want {
				t.Errorf("RemoveTrackingParameters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
