package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestLookupSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/203.0.113.10" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "status,country,city" {
			t.Errorf("fields = %q", got)
		}
		fmt.Fprint(w, `{"status":"success","country":"France","city":"Paris"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	loc, err := c.Lookup(context.Background(), "203.0.113.10")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if loc.Country != "France" || loc.City != "Paris" {
		t.Errorf("location = %+v", loc)
	}
}

func TestLookupFillsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","country":"","city":""}`)
	}))
	defer srv.Close()

	loc, err := New(srv.URL, time.Second, nil).Lookup(context.Background(), "203.0.113.10")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if loc.Country != "Unknown" || loc.City != "Unknown" {
		t.Errorf("location = %+v, want Unknown fallbacks", loc)
	}
}

func TestLookupFailStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"fail"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, nil).Lookup(context.Background(), "203.0.113.10")
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("err = %v, want ErrLookupFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (definitive failure must not retry)", calls.Load())
	}
}

func TestLookupRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status":"success","country":"Germany","city":"Berlin"}`)
	}))
	defer srv.Close()

	loc, err := New(srv.URL, time.Second, nil).Lookup(context.Background(), "203.0.113.10")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if loc.Country != "Germany" {
		t.Errorf("Country = %q", loc.Country)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}
