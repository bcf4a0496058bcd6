// Package metrics exposes Prometheus counters for the hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClicksRecorded counts successfully persisted click records.
	ClicksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "briefen_clicks_recorded_total",
		Help: "Number of click records persisted.",
	})

	// ClickRecordFailures counts click persistence errors that were
	// swallowed to keep the redirect working.
	ClickRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "briefen_click_record_failures_total",
		Help: "Number of click persistence failures (redirect unaffected).",
	})

	// Scrapes counts scrape attempts by outcome kind ("success" or the
	// scraper error kind).
	Scrapes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefen_scrapes_total",
		Help: "Number of webpage scrapes by outcome.",
	}, []string{"outcome"})

	// SlugBatches counts AI slug-generation batches issued.
	SlugBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "briefen_slug_batches_total",
		Help: "Number of AI slug generation batches requested.",
	})

	// GeoLookups counts geolocation enrichment attempts by status.
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefen_geo_lookups_total",
		Help: "Number of geolocation lookups by status.",
	}, []string{"status"})
)
