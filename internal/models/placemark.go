package models

import "time"

// Placemark represents a marker plotted at a resolved coordinate.
type Placemark struct {
	Coordinates Coordinates `json:"coordinates"` // Coordinates is where the marker is placed.
	Index       int         `json:"index"`       // Index is the job number shown on the marker.
	Original    string      `json:"original"`    // Original is the address as the user entered it.
	Found       string      `json:"found"`       // Found is the normalized address the provider returned.
}

// SessionRecord is a persisted summary of a completed batch run.
type SessionRecord struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	FoundCount int       `json:"found_count"`
	NotFound   []string  `json:"not_found"`
	Cancelled  bool      `json:"cancelled"`
}
