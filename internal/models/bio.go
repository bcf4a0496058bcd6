package models

import (
	"regexp"
	"strings"
	"time"
)

// BioPage is a single public "link-in-bio" profile page. One per user.
type BioPage struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"uniqueIndex;not null"`
	Username    string    `gorm:"uniqueIndex;size:30;not null"`
	DisplayName string    `gorm:"size:100"`
	Bio         string    // free-form text
	AvatarBlob  string    // object-storage key, empty when no avatar
	Theme       string    `gorm:"size:20;not null;default:default"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Links []BioLink `gorm:"foreignKey:BioPageID;constraint:OnDelete:CASCADE"`
}

// BioLink is one ordered entry on a bio page. Position values define the
// display order; they need not be contiguous but are reorderable as a batch.
type BioLink struct {
	ID         uint      `gorm:"primaryKey"`
	BioPageID  uint      `gorm:"index;not null"`
	Title      string    `gorm:"size:100;not null"`
	URL        string    `gorm:"not null"`
	Position   int       `gorm:"not null;default:0"`
	IsActive   bool      `gorm:"not null;default:true"`
	IsSocial   bool      `gorm:"not null;default:false"`
	ClickCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// socialPatterns maps platform names to host patterns used to classify
// social links for display.
var socialPatterns = map[string]*regexp.Regexp{
	"twitter":   regexp.MustCompile(`(twitter\.com|x\.com)`),
	"linkedin":  regexp.MustCompile(`linkedin\.com`),
	"github":    regexp.MustCompile(`github\.com`),
	"instagram": regexp.MustCompile(`instagram\.com`),
	"facebook":  regexp.MustCompile(`facebook\.com`),
	"youtube":   regexp.MustCompile(`youtube\.com`),
	"tiktok":    regexp.MustCompile(`tiktok\.com`),
	"discord":   regexp.MustCompile(`discord\.(gg|com)`),
	"telegram":  regexp.MustCompile(`t\.me`),
	"whatsapp":  regexp.MustCompile(`(wa\.me|whatsapp\.com)`),
	"snapchat":  regexp.MustCompile(`snapchat\.com`),
	"reddit":    regexp.MustCompile(`reddit\.com`),
	"pinterest": regexp.MustCompile(`pinterest\.com`),
	"twitch":    regexp.MustCompile(`twitch\.tv`),
	"medium":    regexp.MustCompile(`medium\.com`),
}

// SocialPlatform returns the platform name a social link belongs to, or
// "other" when none of the known hosts match. Empty for non-social links.
func (l *BioLink) SocialPlatform() string {
	if !l.IsSocial {
		return ""
	}
	lower := strings.ToLower(l.URL)
	for platform, pattern := range socialPatterns {
		if pattern.MatchString(lower) {
			return platform
		}
	}
	return "other"
}
