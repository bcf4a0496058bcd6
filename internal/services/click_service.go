package services

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/Ifihan/briefen-me/internal/metrics"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/mileusna/useragent"
)

// ClickService records clicks synchronously and hands geolocation
// enrichment off to the background workers. Recording must never block
// or fail the redirect: persistence errors are logged and swallowed.
type ClickService struct {
	clickRepo repository.ClickRepository
	salt      string
	geoJobs   chan<- models.GeoJob
}

// NewClickService creates a ClickService. geoJobs may be nil to disable
// enrichment (tests, CLI).
func NewClickService(clickRepo repository.ClickRepository, salt string, geoJobs chan<- models.GeoJob) *ClickService {
	return &ClickService{clickRepo: clickRepo, salt: salt, geoJobs: geoJobs}
}

// Record persists one click for the link and increments its counter in
// the same transaction, then queues the geolocation job. Always returns
// before the caller sends the redirect.
func (s *ClickService) Record(link *models.Link, ipAddress, uaString, referrer string) {
	click := &models.Click{
		LinkID:    link.ID,
		ClickedAt: time.Now(),
		IPHash:    hashIP(ipAddress, s.salt),
		UserAgent: uaString,
	}
	click.DeviceType, click.Browser = ParseDeviceInfo(uaString)
	if referrer != "" {
		click.Referrer = &referrer
	}

	if err := s.clickRepo.CreateClickAndIncrement(click); err != nil {
		// The visitor still gets redirected; analytics loses one click.
		log.Printf("ERROR: failed to record click for link %d (slug %s): %v", link.ID, link.Slug, err)
		metrics.ClickRecordFailures.Inc()
		return
	}
	metrics.ClicksRecorded.Inc()

	if s.geoJobs == nil || ipAddress == "" {
		return
	}
	// Non-blocking send: a full buffer drops the enrichment, never the
	// redirect. The click row is already committed, so the worker's
	// later UPDATE is guaranteed to see it.
	select {
	case s.geoJobs <- models.GeoJob{ClickID: click.ID, IPAddress: ipAddress}:
	default:
		log.Printf("WARNING: geolocation queue full, dropping enrichment for click %d", click.ID)
	}
}

// hashIP hashes the source address with a keyed one-way hash. The same
// salt is used for every record so repeat visitors group together, but
// the raw address is never stored.
func hashIP(ipAddress, salt string) *string {
	if ipAddress == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(salt + ipAddress))
	hashed := hex.EncodeToString(sum[:])
	return &hashed
}

// ParseDeviceInfo classifies a user-agent string into a device class and
// a browser family.
func ParseDeviceInfo(uaString string) (deviceType, browser string) {
	if uaString == "" {
		return "unknown", "Unknown"
	}

	ua := useragent.Parse(uaString)
	switch {
	case ua.Bot:
		deviceType = "bot"
	case ua.Mobile:
		deviceType = "mobile"
	case ua.Tablet:
		deviceType = "tablet"
	case ua.Desktop:
		deviceType = "desktop"
	default:
		deviceType = "unknown"
	}

	browser = ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	return deviceType, browser
}
