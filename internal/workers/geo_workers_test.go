package workers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Ifihan/briefen-me/internal/geo"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedClick(t *testing.T, db *gorm.DB) *models.Click {
	t.Helper()
	link := &models.Link{OriginalURL: "https://example.com/", Slug: "worker-test"}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
	click := &models.Click{LinkID: link.ID, ClickedAt: time.Now(), DeviceType: "desktop", Browser: "Chrome"}
	if err := db.Create(click).Error; err != nil {
		t.Fatalf("failed to seed click: %v", err)
	}
	return click
}

func TestGeoWorkerEnrichesClick(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","country":"France","city":"Paris"}`)
	}))
	defer srv.Close()

	db := testDB(t)
	click := seedClick(t, db)
	clickRepo := repository.NewClickRepository(db)
	geoClient := geo.New(srv.URL, 2*time.Second, nil)

	jobs := make(chan models.GeoJob, 1)
	StartGeoWorkers(1, jobs, geoClient, clickRepo)
	jobs <- models.GeoJob{ClickID: click.ID, IPAddress: "203.0.113.10"}
	close(jobs)

	deadline := time.Now().Add(3 * time.Second)
	for {
		var got models.Click
		if err := db.First(&got, click.ID).Error; err != nil {
			t.Fatalf("failed to reload click: %v", err)
		}
		if got.Country != nil {
			if *got.Country != "France" || got.City == nil || *got.City != "Paris" {
				t.Fatalf("click enriched with %v/%v", got.Country, got.City)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("click was never enriched")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGeoWorkerDropsFailedLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"fail"}`)
	}))
	defer srv.Close()

	db := testDB(t)
	click := seedClick(t, db)
	clickRepo := repository.NewClickRepository(db)
	geoClient := geo.New(srv.URL, 2*time.Second, nil)

	jobs := make(chan models.GeoJob)
	StartGeoWorkers(1, jobs, geoClient, clickRepo)
	jobs <- models.GeoJob{ClickID: click.ID, IPAddress: "203.0.113.10"}
	close(jobs)

	// Give the worker a moment to finish before asserting nothing changed.
	time.Sleep(200 * time.Millisecond)
	var got models.Click
	if err := db.First(&got, click.ID).Error; err != nil {
		t.Fatalf("failed to reload click: %v", err)
	}
	if got.Country != nil || got.City != nil {
		t.Errorf("failed lookup should leave location nil, got %v/%v", got.Country, got.City)
	}
}
