package models

import "time"

// CalendarEvent is the provider-neutral event derived from one exam
// record. It is ephemeral: recomputed per export action and discarded
// after use. Start and End are wall-clock instants carried in UTC.
type CalendarEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}
