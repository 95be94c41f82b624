package models

import "time"

// StopTiming is one per-stop entry of a schedule. The stop_timings order is
// the authoritative arrival sequence; it is not cross-checked against the
// bus route.
type StopTiming struct {
	StopID        string `json:"stop_id"`
	StopName      string `json:"stop_name"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime"`
}

type Schedule struct {
	ID           string       `json:"id"`
	BusID        string       `json:"busId"`
	DaysActive   []string     `json:"daysActive"`
	StopTimings  []StopTiming `json:"stop_timings"`
	FrequencyMin *int         `json:"frequencyMin"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
