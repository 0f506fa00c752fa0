package dto

import "time"

// CalendarExport bundles every export representation of one exam's
// calendar event. All four derive from the same start/end instants.
type CalendarExport struct {
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`

	GoogleURL   string `json:"google_url"`
	OutlookURL  string `json:"outlook_url"`
	ICSFileName string `json:"ics_file_name"`
	ICSDataURI  string `json:"ics_data_uri"`
	CopyText    string `json:"copy_text"`
}
