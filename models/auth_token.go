package models

import "time"

// AuthToken is the single live bearer credential of a user.
type AuthToken struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false"`
	Key       string    `gorm:"size:256;not null;uniqueIndex"`
	CreatedAt time.Time
}
