package monitor

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Ifihan/briefen-me/internal/repository"
)

// UrlMonitor periodically checks that link destinations are still
// reachable and logs state transitions.
type UrlMonitor struct {
	linkRepo    repository.LinkRepository
	interval    time.Duration
	knownStates map[uint]bool // link ID -> last observed accessibility
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewUrlMonitor creates and returns a new instance of UrlMonitor.
func NewUrlMonitor(linkRepo repository.LinkRepository, interval time.Duration) *UrlMonitor {
	return &UrlMonitor{
		linkRepo:    linkRepo,
		interval:    interval,
		knownStates: make(map[uint]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs the monitoring loop. Blocking; run it in a goroutine.
func (m *UrlMonitor) Start() {
	log.Printf("[MONITOR] Starting URL monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkUrls()

	for range ticker.C {
		m.checkUrls()
	}
}

// checkUrls verifies every destination and logs changes since the
// previous pass.
func (m *UrlMonitor) checkUrls() {
	links, err := m.linkRepo.GetAllLinks()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving links for monitoring: %v", err)
		return
	}

	for _, link := range links {
		currentState := m.isUrlAccessible(link.OriginalURL)

		m.mu.Lock()
		previousState, exists := m.knownStates[link.ID]
		m.knownStates[link.ID] = currentState
		m.mu.Unlock()

		if !exists {
			log.Printf("[MONITOR] Initial state for link %s (%s): %s",
				link.Slug, link.OriginalURL, formatState(currentState))
			continue
		}

		if currentState != previousState {
			log.Printf("[NOTIFICATION] Link %s (%s) changed from %s to %s!",
				link.Slug, link.OriginalURL, formatState(previousState), formatState(currentState))
		}
	}
}

// isUrlAccessible issues a HEAD request and treats 2xx/3xx as healthy.
func (m *UrlMonitor) isUrlAccessible(url string) bool {
	resp, err := m.httpClient.Head(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

func formatState(accessible bool) string {
	if accessible {
		return "accessible"
	}
	return "inaccessible"
}
