package domain

import "time"

// Position is a single fix reported by the position source. Accuracy is the
// platform-reported radius in meters and is informational only.
type Position struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}
