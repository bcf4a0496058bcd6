package services

import (
	"context"
	"fmt"

	"github.com/Ifihan/briefen-me/internal/ai"
	"github.com/Ifihan/briefen-me/internal/metrics"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/scrape"
	"github.com/Ifihan/briefen-me/internal/slug"
	"github.com/Ifihan/briefen-me/internal/validate"
)

// EventStatus classifies slug-suggestion stream events.
type EventStatus string

const (
	StatusProgress EventStatus = "progress"
	StatusSuccess  EventStatus = "success"
	StatusError    EventStatus = "error"
)

// Event is one element of the suggestion stream. The stream is ordered
// and one-directional: consumers render events as they arrive.
type Event struct {
	Status  EventStatus `json:"status"`
	Message string      `json:"message"`
	Slugs   []string    `json:"slugs,omitempty"`
}

// maxSuggestions is how many available slugs a successful run returns.
const maxSuggestions = 3

// SlugSuggestionConfig bounds the generation loop.
type SlugSuggestionConfig struct {
	Batches         int  // AI batches before giving up (default 3)
	OptionsPerBatch int  // candidates requested per batch (default 5)
	Reasoning       bool // stream model narration lines as progress events
}

// SlugSuggestionService orchestrates scrape, AI generation and
// availability filtering into a live event stream.
type SlugSuggestionService struct {
	scraper   *scrape.Scraper
	generator ai.Generator
	linkRepo  repository.LinkRepository
	config    SlugSuggestionConfig
}

// NewSlugSuggestionService creates and returns a new instance of SlugSuggestionService.
func NewSlugSuggestionService(scraper *scrape.Scraper, generator ai.Generator, linkRepo repository.LinkRepository, config SlugSuggestionConfig) *SlugSuggestionService {
	if config.Batches <= 0 {
		config.Batches = 3
	}
	if config.OptionsPerBatch <= 0 {
		config.OptionsPerBatch = 5
	}
	return &SlugSuggestionService{
		scraper:   scraper,
		generator: generator,
		linkRepo:  linkRepo,
		config:    config,
	}
}

// Generate produces the suggestion event stream for rawURL. The channel
// is unbuffered so events reach the consumer as they happen, and it is
// closed after the terminal success or error event. Cancelling ctx stops
// scraping and AI calls; no more events are sent after that.
func (s *SlugSuggestionService) Generate(ctx context.Context, rawURL string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		s.run(ctx, rawURL, events)
	}()
	return events
}

func (s *SlugSuggestionService) run(ctx context.Context, rawURL string, events chan<- Event) {
	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	normalized, err := validate.Validate(rawURL)
	if err != nil {
		emit(Event{Status: StatusError, Message: err.Error()})
		return
	}

	if !emit(Event{Status: StatusProgress, Message: "Fetching webpage..."}) {
		return
	}

	scraped := s.scraper.Scrape(ctx, normalized)
	if !scraped.Success {
		metrics.Scrapes.WithLabelValues(scraped.ErrKind).Inc()
		emit(Event{Status: StatusError, Message: scraped.ErrMessage})
		return
	}
	metrics.Scrapes.WithLabelValues("success").Inc()

	if !emit(Event{Status: StatusProgress, Message: "Analyzing content..."}) {
		return
	}

	// In reasoning mode the model's intermediate narration is relayed
	// verbatim as progress text; it is never parsed for logic.
	genCtx := ctx
	if s.config.Reasoning {
		genCtx = ai.ContextWithNarration(ctx, func(line string) {
			emit(Event{Status: StatusProgress, Message: line})
		})
	}

	var available []string
	seen := make(map[string]bool)

	for batch := 0; batch < s.config.Batches && len(available) < maxSuggestions; batch++ {
		if !emit(Event{Status: StatusProgress,
			Message: fmt.Sprintf("Generating slug options... (attempt %d/%d)", batch+1, s.config.Batches)}) {
			return
		}

		metrics.SlugBatches.Inc()
		candidates, err := s.generator.GenerateSlugs(genCtx, scraped.Title, scraped.Description, scraped.Content, s.config.OptionsPerBatch)
		if err != nil {
			// An AI failure aborts the whole run; the batch loop exists
			// to compensate for slug collisions, not for AI errors.
			emit(Event{Status: StatusError, Message: err.Error()})
			return
		}

		sanitized := make([]string, 0, len(candidates))
		for _, candidate := range candidates {
			if cleaned := slug.Sanitize(candidate); cleaned != "" {
				sanitized = append(sanitized, cleaned)
			}
		}

		if !emit(Event{Status: StatusProgress, Message: "Checking availability..."}) {
			return
		}

		taken, err := s.linkRepo.SlugsTaken(sanitized)
		if err != nil {
			emit(Event{Status: StatusError, Message: "Could not check slug availability. Please try again."})
			return
		}

		for _, candidate := range sanitized {
			if taken[candidate] || seen[candidate] {
				continue
			}
			seen[candidate] = true
			available = append(available, candidate)
			if len(available) >= maxSuggestions {
				break
			}
		}
	}

	switch {
	case len(available) >= maxSuggestions:
		emit(Event{Status: StatusSuccess, Message: "Slug options ready!", Slugs: available[:maxSuggestions]})
	case len(available) > 0:
		emit(Event{Status: StatusSuccess,
			Message: fmt.Sprintf("Found %d available options", len(available)), Slugs: available})
	default:
		emit(Event{Status: StatusError, Message: "Could not generate available slugs. Please try again."})
	}
}
