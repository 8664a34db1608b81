package models

import "time"

// Player is a registered account. UID is the stable opaque identity the
// core subsystems key on; everything else is profile data.
type Player struct {
	ID           int64
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
