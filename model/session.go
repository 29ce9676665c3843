package model

import "time"

// Session is one signed-in device. Sessions are ended by flipping IsActive
// rather than deleted; Mongo's TTL index removes them after ExpiresAt.
type Session struct {
	SessionID      string    `bson:"session_id" json:"session_id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	DisplayName    string    `bson:"display_name" json:"display_name"`
	DeviceInfo     string    `bson:"device_info" json:"device_info"`
	IPAddress      string    `bson:"ip_address" json:"ip_address"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt      time.Time `bson:"expires_at" json:"expires_at"`
	LastActivityAt time.Time `bson:"last_activity_at" json:"last_activity_at"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
}

// Usable reports whether the session is active, unexpired and has been used
// within idleLimit.
func (s *Session) Usable(now time.Time, idleLimit time.Duration) bool {
	if s == nil || !s.IsActive || !now.Before(s.ExpiresAt) {
		return false
	}
	return now.Sub(s.LastActivityAt) <= idleLimit
}
