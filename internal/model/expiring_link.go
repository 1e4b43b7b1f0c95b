package model

import "time"

// ExpiringLink grants unauthenticated, time-boxed retrieval of one image.
// The token is the credential; there is no revocation and no consumption,
// the link stays redeemable until ExpiresAt.
type ExpiringLink struct {
	ID        string    `db:"id"`
	ImageID   string    `db:"image_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (l *ExpiringLink) IsExpired() bool {
	return !time.Now().Before(l.ExpiresAt)
}
