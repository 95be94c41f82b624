package models

import "time"

type Stop struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Route is the serviced path of a bus, embedded in the bus record.
type Route struct {
	City  string `json:"city"`
	Stops []Stop `json:"stops"`
}

type Bus struct {
	ID              string         `json:"id"`
	BusCategory     string         `json:"busCategory"`
	BusNumber       string         `json:"busNumber"`
	Type            string         `json:"type"`
	Capacity        int            `json:"capacity"`
	RegistrationNo  string         `json:"registrationNo"`
	GPSDeviceID     string         `json:"gpsDeviceId"`
	CurrentLocation map[string]any `json:"currentLocation"`
	Status          string         `json:"status"`
	Route           *Route         `json:"route,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// StopNames returns the ordered stop names of the bus route.
func (b Bus) StopNames() []string {
	if b.Route == nil {
		return nil
	}
	names := make([]string, 0, len(b.Route.Stops))
	for _, s := range b.Route.Stops {
		names = append(names, s.Name)
	}
	return names
}

// Serves reports whether the bus runs from source to destination.
// Both stops must appear in the route and source must come strictly
// before destination. Direction matters; there is no wraparound.
func (b Bus) Serves(source, destination string) bool {
	names := b.StopNames()
	srcIdx, dstIdx := -1, -1
	for i, name := range names {
		if srcIdx < 0 && name == source {
			srcIdx = i
		}
		if dstIdx < 0 && name == destination {
			dstIdx = i
		}
	}
	return srcIdx >= 0 && dstIdx >= 0 && srcIdx < dstIdx
}
