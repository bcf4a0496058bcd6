package services

import (
	"time"

	"github.com/Ifihan/briefen-me/internal/repository"
)

const topN = 10

// Display fallbacks for clicks whose categorical value was never
// recorded.
const (
	fallbackReferrer = "Direct"
	fallbackBrowser  = "Unknown"
	fallbackCountry  = "Unknown"
	fallbackDevice   = "unknown"
)

// Bucket is one labeled aggregation count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DayBucket is one per-day count.
type DayBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Report is the aggregated analytics view for one link.
type Report struct {
	TotalClicks int         `json:"total_clicks"`
	ByDay       []DayBucket `json:"clicks_over_time"`
	Referrers   []Bucket    `json:"referrers"`
	Devices     []Bucket    `json:"devices"`
	Browsers    []Bucket    `json:"browsers"`
	Countries   []Bucket    `json:"countries"`
}

// AnalyticsService produces read-side aggregations over click history.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsService creates and returns a new instance of AnalyticsService.
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

// Aggregate builds the report for a link. When days > 0 only the
// trailing window is counted; otherwise the report is all-time.
func (s *AnalyticsService) Aggregate(linkID uint, days int) (*Report, error) {
	var since *time.Time
	if days > 0 {
		t := time.Now().AddDate(0, 0, -days)
		since = &t
	}

	total, err := s.analyticsRepo.TotalClicks(linkID, since)
	if err != nil {
		return nil, err
	}

	byDay, err := s.analyticsRepo.ClicksByDay(linkID, since)
	if err != nil {
		return nil, err
	}

	referrers, err := s.analyticsRepo.TopReferrers(linkID, since, topN)
	if err != nil {
		return nil, err
	}

	devices, err := s.analyticsRepo.DeviceBreakdown(linkID, since)
	if err != nil {
		return nil, err
	}

	browsers, err := s.analyticsRepo.TopBrowsers(linkID, since, topN)
	if err != nil {
		return nil, err
	}

	countries, err := s.analyticsRepo.TopCountries(linkID, since, topN)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalClicks: total,
		ByDay:       make([]DayBucket, 0, len(byDay)),
		Referrers:   labeled(referrers, fallbackReferrer),
		Devices:     labeled(devices, fallbackDevice),
		Browsers:    labeled(browsers, fallbackBrowser),
		Countries:   labeled(countries, fallbackCountry),
	}
	for _, row := range byDay {
		report.ByDay = append(report.ByDay, DayBucket{Date: row.Date, Count: row.Count})
	}
	return report, nil
}

// labeled renders NULL or empty categorical values under the fixed
// fallback label.
func labeled(rows []repository.LabelCount, fallback string) []Bucket {
	buckets := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		label := fallback
		if row.Label != nil && *row.Label != "" {
			label = *row.Label
		}
		buckets = append(buckets, Bucket{Label: label, Count: row.Count})
	}
	return buckets
}
