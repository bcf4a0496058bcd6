package models

import "time"

// Link représente un lien raccourci dans la base de données.
// Le compteur de clics est incrémenté dans la même transaction que
// l'insertion du clic correspondant.
type Link struct {
	ID          uint      `gorm:"primaryKey"`
	Slug        string    `gorm:"uniqueIndex;size:50;not null"`
	OriginalURL string    `gorm:"not null"`
	UserID      *uint     `gorm:"index"` // nil for anonymous links
	ClickCount  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
