package repository

import (
	"fmt"
	"time"

	"github.com/Ifihan/briefen-me/internal/models"
	"gorm.io/gorm"
)

// LabelCount is one aggregation bucket. Label may be nil for clicks
// whose categorical value was never recorded; the service layer maps
// those to display fallbacks.
type LabelCount struct {
	Label *string
	Count int
}

// DayCount is one per-day bucket.
type DayCount struct {
	Date  string
	Count int
}

// AnalyticsRepository exposes the read-side grouping queries over click
// records, scoped to one link and an optional lower time bound.
type AnalyticsRepository interface {
	TotalClicks(linkID uint, since *time.Time) (int, error)
	ClicksByDay(linkID uint, since *time.Time) ([]DayCount, error)
	TopReferrers(linkID uint, since *time.Time, limit int) ([]LabelCount, error)
	DeviceBreakdown(linkID uint, since *time.Time) ([]LabelCount, error)
	TopBrowsers(linkID uint, since *time.Time, limit int) ([]LabelCount, error)
	TopCountries(linkID uint, since *time.Time, limit int) ([]LabelCount, error)
}

// GormAnalyticsRepository est l'implémentation de AnalyticsRepository utilisant GORM.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository crée et retourne une nouvelle instance de GormAnalyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) scoped(linkID uint, since *time.Time) *gorm.DB {
	q := r.db.Model(&models.Click{}).Where("link_id = ?", linkID)
	if since != nil {
		q = q.Where("clicked_at >= ?", *since)
	}
	return q
}

// TotalClicks compte les clics d'un lien sur la fenêtre donnée.
func (r *GormAnalyticsRepository) TotalClicks(linkID uint, since *time.Time) (int, error) {
	var count int64
	if err := r.scoped(linkID, since).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return int(count), nil
}

// ClicksByDay regroupe les clics par jour, ordre chronologique.
func (r *GormAnalyticsRepository) ClicksByDay(linkID uint, since *time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.scoped(linkID, since).
		Select("date(clicked_at) AS date, count(*) AS count").
		Group("date(clicked_at)").
		Order("date(clicked_at) ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by day: %w", err)
	}
	return rows, nil
}

// TopReferrers retourne les référents les plus fréquents.
func (r *GormAnalyticsRepository) TopReferrers(linkID uint, since *time.Time, limit int) ([]LabelCount, error) {
	return r.grouped(linkID, since, "referrer", limit)
}

// DeviceBreakdown regroupe les clics par classe d'appareil.
func (r *GormAnalyticsRepository) DeviceBreakdown(linkID uint, since *time.Time) ([]LabelCount, error) {
	return r.grouped(linkID, since, "device_type", 0)
}

// TopBrowsers retourne les navigateurs les plus fréquents.
func (r *GormAnalyticsRepository) TopBrowsers(linkID uint, since *time.Time, limit int) ([]LabelCount, error) {
	return r.grouped(linkID, since, "browser", limit)
}

// TopCountries retourne les pays les plus fréquents.
func (r *GormAnalyticsRepository) TopCountries(linkID uint, since *time.Time, limit int) ([]LabelCount, error) {
	return r.grouped(linkID, since, "country", limit)
}

func (r *GormAnalyticsRepository) grouped(linkID uint, since *time.Time, column string, limit int) ([]LabelCount, error) {
	var rows []LabelCount
	q := r.scoped(linkID, since).
		Select(column + " AS label, count(*) AS count").
		Group(column).
		Order("count(*) DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}
	return rows, nil
}
