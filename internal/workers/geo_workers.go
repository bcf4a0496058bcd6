package workers

import (
	"context"
	"log"

	"github.com/Ifihan/briefen-me/internal/geo"
	"github.com/Ifihan/briefen-me/internal/metrics"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
)

// StartGeoWorkers launches a pool of goroutines that enrich click
// records with geolocation. Enrichment is fire-and-forget relative to
// the request that produced the click: each job runs with its own
// context, detached from the request lifecycle, and every failure is
// logged and dropped.
func StartGeoWorkers(workerCount int, jobs <-chan models.GeoJob, geoClient *geo.Client, clickRepo repository.ClickRepository) {
	log.Printf("Starting %d geolocation worker(s)...", workerCount)
	for i := 0; i < workerCount; i++ {
		go geoWorker(jobs, geoClient, clickRepo)
	}
}

// geoWorker processes jobs until the channel is closed.
func geoWorker(jobs <-chan models.GeoJob, geoClient *geo.Client, clickRepo repository.ClickRepository) {
	for job := range jobs {
		location, err := geoClient.Lookup(context.Background(), job.IPAddress)
		if err != nil {
			// The record simply keeps null location fields.
			log.Printf("Geolocation lookup failed for click %d: %v", job.ClickID, err)
			metrics.GeoLookups.WithLabelValues("failure").Inc()
			continue
		}

		if err := clickRepo.UpdateGeolocation(job.ClickID, location.Country, location.City); err != nil {
			log.Printf("ERROR: failed to store geolocation for click %d: %v", job.ClickID, err)
			metrics.GeoLookups.WithLabelValues("store_error").Inc()
			continue
		}
		metrics.GeoLookups.WithLabelValues("success").Inc()
	}
}
