package model

import "time"

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position is one point on an active trip: where the traveler is and the
// locality that position reverse-geocodes to. Place may be empty when the
// resolver had nothing to say about the coordinates.
type Position struct {
	Coordinates
	Place string    `json:"place,omitempty"`
	At    time.Time `json:"at,omitempty"`
}

// TriggerState tracks what the scheduler last narrated for the active trip.
// Deltas for the time and distance triggers are always computed against the
// last successful acquisition, not the last trigger check. The state belongs
// to exactly one trip session and is reset when the destination changes.
type TriggerState struct {
	LastPlace        string
	LastFactAt       time.Time
	LastFactPosition *Coordinates
}

// Reset clears the state, as on a destination change or trip end.
func (s *TriggerState) Reset() {
	s.LastPlace = ""
	s.LastFactAt = time.Time{}
	s.LastFactPosition = nil
}
