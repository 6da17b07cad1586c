package models

import "time"

// Device is a registered check-in tablet. Only active devices may submit events.
type Device struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	DeviceID  string    `db:"device_id" json:"device_id"`
	APIToken  string    `db:"api_token" json:"-"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
