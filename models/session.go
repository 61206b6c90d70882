package models

import "time"

// Session is a server-side login session keyed by the cookie token
type Session struct {
	Token     string    `gorm:"type:varchar(64);primaryKey"`
	OwnerID   string    `gorm:"type:varchar(36);not null;index"`
	Owner     *Owner    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is no longer valid at now
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CodeSequence is the durable counter behind generated customer and karigar
// codes, one row per owner, scope and initial.
type CodeSequence struct {
	OwnerID string `gorm:"type:varchar(36);primaryKey"`
	Scope   string `gorm:"type:varchar(16);primaryKey"`
	Initial string `gorm:"type:varchar(8);primaryKey"`
	Value   int    `gorm:"not null;default:0"`
}

// TableName specifies the table name for the CodeSequence model
func (CodeSequence) TableName() string {
	return "code_sequences"
}
