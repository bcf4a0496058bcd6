package services

import (
	"strings"
	"testing"

	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/slug"
)

func TestGenerateSlug(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := GenerateSlug(generatedSlugLength)
		if err != nil {
			t.Fatalf("GenerateSlug failed: %v", err)
		}
		if len(s) != generatedSlugLength {
			t.Fatalf("len(%q) = %d, want %d", s, len(s), generatedSlugLength)
		}
		if !slug.IsValid(s) {
			t.Fatalf("generated slug %q is not a valid slug", s)
		}
		if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ-") {
			t.Fatalf("generated slug %q outside charset", s)
		}
		seen[s] = true
	}
	// 36^6 combinations; 50 draws colliding down to a handful would mean
	// the generator is broken, not unlucky.
	if len(seen) < 45 {
		t.Errorf("only %d distinct slugs out of 50", len(seen))
	}
}

func TestCreateLinkWithGeneratedSlug(t *testing.T) {
	repo := &fakeLinkRepo{}
	svc := NewLinkService(repo)

	link, err := svc.CreateLinkWithGeneratedSlug("https://example.com/some/long/path", nil)
	if err != nil {
		t.Fatalf("CreateLinkWithGeneratedSlug failed: %v", err)
	}
	if !slug.IsValid(link.Slug) || len(link.Slug) != generatedSlugLength {
		t.Errorf("slug = %q", link.Slug)
	}
	if link.OriginalURL != "https://example.com/some/long/path" {
		t.Errorf("OriginalURL = %q", link.OriginalURL)
	}
	if len(repo.created) != 1 {
		t.Errorf("created %d links, want 1", len(repo.created))
	}
}

func TestCreateLinkWithGeneratedSlugRetriesOnCollision(t *testing.T) {
	repo := &fakeLinkRepo{createErrs: []error{repository.ErrDuplicateSlug}}
	svc := NewLinkService(repo)

	link, err := svc.CreateLinkWithGeneratedSlug("https://example.com/", nil)
	if err != nil {
		t.Fatalf("CreateLinkWithGeneratedSlug failed: %v", err)
	}
	if len(repo.created) != 2 {
		t.Errorf("created %d links, want 2 (one collision)", len(repo.created))
	}
	if !slug.IsValid(link.Slug) {
		t.Errorf("slug = %q", link.Slug)
	}
}

func TestCreateLinkWithGeneratedSlugGivesUp(t *testing.T) {
	repo := &fakeLinkRepo{createErrs: []error{
		repository.ErrDuplicateSlug, repository.ErrDuplicateSlug, repository.ErrDuplicateSlug,
		repository.ErrDuplicateSlug, repository.ErrDuplicateSlug,
	}}
	svc := NewLinkService(repo)

	if _, err := svc.CreateLinkWithGeneratedSlug("https://example.com/", nil); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if len(repo.created) != 5 {
		t.Errorf("created %d links, want 5 attempts", len(repo.created))
	}
}

func TestCreateLinkWithGeneratedSlugRejectsBadURL(t *testing.T) {
	repo := &fakeLinkRepo{}
	svc := NewLinkService(repo)

	if _, err := svc.CreateLinkWithGeneratedSlug("http://localhost/internal", nil); err == nil {
		t.Fatal("expected a validation error")
	}
	if len(repo.created) != 0 {
		t.Errorf("created %d links for an invalid URL", len(repo.created))
	}
}
