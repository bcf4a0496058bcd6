package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func modelReply(text string) string {
	reply := generateResponse{}
	reply.Candidates = append(reply.Candidates, struct {
		Content messageContent `json:"content"`
	}{Content: messageContent{Parts: []part{{Text: text}}}})
	out, _ := json.Marshal(reply)
	return string(out)
}

func TestGenerateSlugs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, "generate 5 short") {
			t.Errorf("prompt missing count: %s", prompt)
		}
		if !strings.Contains(prompt, "Title: Go Concurrency") {
			t.Errorf("prompt missing title: %s", prompt)
		}

		fmt.Fprint(w, modelReply("go-patterns\nconcurrency-guide\nworker-pools\n\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "test-key")
	slugs, err := c.GenerateSlugs(context.Background(), "Go Concurrency", "desc", "content", 5)
	if err != nil {
		t.Fatalf("GenerateSlugs failed: %v", err)
	}
	want := []string{"go-patterns", "concurrency-guide", "worker-pools"}
	if diff := cmp.Diff(want, slugs); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSlugsCapsAtN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply("one\ntwo\nthree\nfour\nfive"))
	}))
	defer srv.Close()

	slugs, err := New(srv.URL, "m", "k").GenerateSlugs(context.Background(), "t", "d", "c", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 2 {
		t.Errorf("len = %d, want 2", len(slugs))
	}
}

func TestGenerateSlugsNotConfigured(t *testing.T) {
	c := New("http://unused", "m", "")
	_, err := c.GenerateSlugs(context.Background(), "t", "d", "c", 3)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateSlugsRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, modelReply("second-try"))
	}))
	defer srv.Close()

	slugs, err := New(srv.URL, "m", "k").GenerateSlugs(context.Background(), "t", "d", "c", 3)
	if err != nil {
		t.Fatalf("GenerateSlugs failed: %v", err)
	}
	if len(slugs) != 1 || slugs[0] != "second-try" {
		t.Errorf("slugs = %v", slugs)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerateSlugsNarration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply("Looking at the page structure.\nThe title suggests a tutorial.\n\nfinal-one\nfinal-two"))
	}))
	defer srv.Close()

	var narration []string
	c := New(srv.URL, "m", "k", WithNarration(func(line string) {
		narration = append(narration, line)
	}))

	slugs, err := c.GenerateSlugs(context.Background(), "t", "d", "c", 5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"final-one", "final-two"}, slugs); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
	wantNarration := []string{"Looking at the page structure.", "The title suggests a tutorial."}
	if diff := cmp.Diff(wantNarration, narration); diff != "" {
		t.Errorf("narration mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSlugsContextNarration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply("Weighing the page title against the body.\n\nctx-one\nctx-two"))
	}))
	defer srv.Close()

	var clientLines, ctxLines []string
	c := New(srv.URL, "m", "k", WithNarration(func(line string) {
		clientLines = append(clientLines, line)
	}))

	ctx := ContextWithNarration(context.Background(), func(line string) {
		ctxLines = append(ctxLines, line)
	})
	slugs, err := c.GenerateSlugs(ctx, "t", "d", "c", 5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ctx-one", "ctx-two"}, slugs); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Weighing the page title against the body."}, ctxLines); diff != "" {
		t.Errorf("context narration mismatch (-want +got):\n%s", diff)
	}
	// The request-scoped callback wins over the client-level one.
	if len(clientLines) != 0 {
		t.Errorf("client-level callback received %v", clientLines)
	}
}

func TestNarrateWithoutCallback(t *testing.T) {
	// Must be a no-op on a plain context.
	Narrate(context.Background(), "nobody listening")
}

func TestTruncateRuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "abc", 10, "abc"},
		{"exact", "abcd", 4, "abcd"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte at boundary", "abécd", 3, "ab"},
		{"multibyte kept", "abécd", 4, "abé"},
		{"emoji split", "a\U0001F600b", 3, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestGenerateSlugsNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "m", "k").GenerateSlugs(context.Background(), "t", "d", "c", 3); err == nil {
		t.Error("expected an error for empty candidates")
	}
}
