package services

import (
	"testing"
	"time"

	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Link{}, &models.Click{}, &models.User{}, &models.BioPage{}, &models.BioLink{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedLink(t *testing.T, db *gorm.DB, slug string) *models.Link {
	t.Helper()
	link := &models.Link{Slug: slug, OriginalURL: "https://example.com/" + slug}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
	return link
}

const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestRecordPersistsClickAndCounter(t *testing.T) {
	db := testDB(t)
	link := seedLink(t, db, "go-guide")
	svc := NewClickService(repository.NewClickRepository(db), "test-salt", nil)

	svc.Record(link, "203.0.113.10", desktopUA, "https://news.ycombinator.com/")
	svc.Record(link, "203.0.113.10", desktopUA, "")

	var clicks []models.Click
	if err := db.Where("link_id = ?", link.ID).Find(&clicks).Error; err != nil {
		t.Fatal(err)
	}
	if len(clicks) != 2 {
		t.Fatalf("clicks = %d, want 2", len(clicks))
	}

	first := clicks[0]
	if first.IPHash == nil || len(*first.IPHash) != 64 {
		t.Errorf("IPHash should be a hex sha256, got %v", first.IPHash)
	}
	if *first.IPHash == "203.0.113.10" {
		t.Error("raw IP address must not be stored")
	}
	if first.Referrer == nil || *first.Referrer != "https://news.ycombinator.com/" {
		t.Errorf("Referrer = %v", first.Referrer)
	}
	if clicks[1].Referrer != nil {
		t.Errorf("empty referrer should be NULL, got %v", *clicks[1].Referrer)
	}
	if first.DeviceType != "desktop" {
		t.Errorf("DeviceType = %q, want desktop", first.DeviceType)
	}
	if first.Browser != "Chrome" {
		t.Errorf("Browser = %q, want Chrome", first.Browser)
	}
	if first.Country != nil || first.City != nil {
		t.Error("geolocation should be NULL until the worker fills it")
	}

	var fresh models.Link
	if err := db.First(&fresh, link.ID).Error; err != nil {
		t.Fatal(err)
	}
	if fresh.ClickCount != 2 {
		t.Errorf("ClickCount = %d, want 2", fresh.ClickCount)
	}
}

func TestRecordSameIPGroupsTogether(t *testing.T) {
	db := testDB(t)
	link := seedLink(t, db, "grouped")
	svc := NewClickService(repository.NewClickRepository(db), "test-salt", nil)

	svc.Record(link, "203.0.113.10", desktopUA, "")
	svc.Record(link, "203.0.113.10", desktopUA, "")
	svc.Record(link, "203.0.113.99", desktopUA, "")

	var clicks []models.Click
	db.Where("link_id = ?", link.ID).Order("id").Find(&clicks)
	if len(clicks) != 3 {
		t.Fatalf("clicks = %d, want 3", len(clicks))
	}
	if *clicks[0].IPHash != *clicks[1].IPHash {
		t.Error("same IP should hash identically")
	}
	if *clicks[0].IPHash == *clicks[2].IPHash {
		t.Error("different IPs should hash differently")
	}
}

func TestRecordQueuesGeoJob(t *testing.T) {
	db := testDB(t)
	link := seedLink(t, db, "geo")
	jobs := make(chan models.GeoJob, 1)
	svc := NewClickService(repository.NewClickRepository(db), "test-salt", jobs)

	svc.Record(link, "203.0.113.10", desktopUA, "")

	select {
	case job := <-jobs:
		if job.IPAddress != "203.0.113.10" {
			t.Errorf("job IP = %q", job.IPAddress)
		}
		if job.ClickID == 0 {
			t.Error("job should reference the persisted click")
		}
	default:
		t.Fatal("no geolocation job queued")
	}
}

func TestRecordFullQueueDropsEnrichment(t *testing.T) {
	db := testDB(t)
	link := seedLink(t, db, "full-queue")
	jobs := make(chan models.GeoJob) // unbuffered, nobody reading
	svc := NewClickService(repository.NewClickRepository(db), "test-salt", jobs)

	done := make(chan struct{})
	go func() {
		svc.Record(link, "203.0.113.10", desktopUA, "")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full geolocation queue")
	}

	var count int64
	db.Model(&models.Click{}).Where("link_id = ?", link.ID).Count(&count)
	if count != 1 {
		t.Errorf("click count = %d, want 1 (recording must survive the drop)", count)
	}
}

func TestParseDeviceInfo(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		deviceType string
		browser    string
	}{
		{"desktop chrome", desktopUA, "desktop", "Chrome"},
		{
			"mobile safari",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"mobile", "Safari",
		},
		{
			"bot",
			"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			"bot", "Googlebot",
		},
		{"empty", "", "unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deviceType, browser := ParseDeviceInfo(tt.ua)
			if deviceType != tt.deviceType {
				t.Errorf("deviceType = %q, want %q", deviceType, tt.deviceType)
			}
			if browser != tt.browser {
				t.Errorf("browser = %q, want %q", browser, tt.browser)
			}
		})
	}
}

func TestUpdateGeolocationMissingClick(t *testing.T) {
	db := testDB(t)
	repo := repository.NewClickRepository(db)

	// The click was deleted between recording and enrichment.
	if err := repo.UpdateGeolocation(9999, "France", "Paris"); err != nil {
		t.Errorf("UpdateGeolocation on missing click should be a no-op, got %v", err)
	}
}
