package weather

import "time"

// Conditions is the normalised weather snapshot served to clients.
//
// It deliberately exposes only the fields the dashboard renders; the raw
// upstream payload is never passed through.
type Conditions struct {
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Temp        float64   `json:"temp"`
	IsDay       bool      `json:"is_day"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Coordinates identifies a forecast location by latitude and longitude.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Query identifies a forecast location either by postal code or by
// coordinates. Zip takes precedence when both are set.
type Query struct {
	Zip    string
	Coords *Coordinates
}
