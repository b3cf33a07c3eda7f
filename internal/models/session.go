package models

import "time"

// Session is a signed-in browser session
type Session struct {
	ID        string    `gorm:"primarykey"`
	Subject   string    `gorm:"not null;index"`
	Token     string    `gorm:"type:text"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
