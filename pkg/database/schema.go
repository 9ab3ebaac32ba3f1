package database

import (
	"time"

	"github.com/lib/pq"
)

type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is a stored browsing session. The hidden panel ids are kept in
// their own column so they can be inspected without decoding the state.
type Session struct {
	Model

	ID        string         `json:"id" gorm:"primaryKey"`
	State     []byte         `json:"state" gorm:"type:jsonb;not null"`
	Hidden    pq.StringArray `json:"hidden" gorm:"type:text[]"`
	Terms     string         `json:"terms"`
	ExpiresAt time.Time      `json:"expiresAt" gorm:"type:timestamptz;index"`
}
