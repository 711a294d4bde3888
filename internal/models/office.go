package models

import "time"

// Office represents a branch location ("despacho") employees report to.
// The QR token is the rotatable credential embedded in the office's
// check-in QR code; it is nil until first generated.
type Office struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Latitude       float64   `db:"latitude" json:"latitude"`
	Longitude      float64   `db:"longitude" json:"longitude"`
	GeofenceRadius *float64  `db:"geofence_radius" json:"geofence_radius,omitempty"`
	QRToken        *string   `db:"qr_token" json:"qr_token,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OfficeFilter captures listing criteria for offices.
type OfficeFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
