package models

import "time"

// User is the ownership anchor for links and bio pages.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"size:60;not null"` // bcrypt
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
