package models

import "time"

// Click represents one recorded visit to a shortened URL.
// The row is written synchronously during the redirect; Country and City
// are filled in later by the geolocation workers and may stay nil forever
// when the lookup fails.
type Click struct {
	ID uint `gorm:"primaryKey"`

	// LinkID is the foreign key of the Link that was clicked.
	LinkID uint `gorm:"index;not null"`
	Link   Link `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`

	// ClickedAt records the exact moment of the click; indexed so the
	// analytics aggregator can filter by trailing time window.
	ClickedAt time.Time `gorm:"index"`

	// IPHash is a salted SHA-256 of the visitor address. The raw address
	// is never stored.
	IPHash *string `gorm:"size:64"`

	Country *string `gorm:"size:100"`
	City    *string `gorm:"size:100"`

	Referrer   *string
	UserAgent  string `gorm:"size:512"`
	DeviceType string `gorm:"size:20"`  // bot, mobile, tablet, desktop, unknown
	Browser    string `gorm:"size:100"` // browser family, e.g. "Chrome"
}

// GeoJob is the payload passed through the enrichment channel. It carries
// the raw address only for the duration of the lookup; the address is
// never persisted.
type GeoJob struct {
	ClickID   uint
	IPAddress string
}
