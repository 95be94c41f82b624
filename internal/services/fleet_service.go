package services

import (
	"sort"
	"strconv"
	"strings"

	"mybus/internal/domain"
	"mybus/internal/domain/models"
	"mybus/internal/repositories"
	"mybus/internal/utils"
)

// FleetService manages buses and their embedded routes, and owns the
// schedule cascade on bus removal.
type FleetService struct {
	Buses     repositories.BusRepository
	Schedules repositories.ScheduleRepository
}

type CreateBusInput struct {
	BusCategory     string
	BusNumber       string
	Type            string
	Capacity        int
	RegistrationNo  string
	GPSDeviceID     string
	CurrentLocation map[string]any
	Status          string
	Route           *models.Route
}

func (s FleetService) CreateBus(in CreateBusInput) (models.Bus, error) {
	missing := []string{}
	require := func(field, value string) {
		if utils.TrimOrEmpty(value) == "" {
			missing = append(missing, field)
		}
	}
	require("busCategory", in.BusCategory)
	require("busNumber", in.BusNumber)
	require("type", in.Type)
	require("registrationNo", in.RegistrationNo)
	require("gpsDeviceId", in.GPSDeviceID)
	if len(missing) > 0 {
		return models.Bus{}, domain.ValidationError{Msg: "missing fields: " + strings.Join(missing, ", ")}
	}
	if in.Capacity <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "capacity", Msg: "must be a positive integer"}
	}

	status := strings.ToUpper(utils.TrimOrEmpty(in.Status))
	if status == "" {
		status = models.StatusActive
	}

	bus, err := s.Buses.Create(models.Bus{
		BusCategory:     utils.TrimOrEmpty(in.BusCategory),
		BusNumber:       utils.TrimOrEmpty(in.BusNumber),
		Type:            utils.TrimOrEmpty(in.Type),
		Capacity:        in.Capacity,
		RegistrationNo:  utils.TrimOrEmpty(in.RegistrationNo),
		GPSDeviceID:     utils.TrimOrEmpty(in.GPSDeviceID),
		CurrentLocation: in.CurrentLocation,
		Status:          status,
		Route:           in.Route,
	})
	if err != nil {
		return models.Bus{}, err
	}
	utils.LogEvent("", "fleet", "create_bus", "id="+bus.ID)
	return bus, nil
}

func (s FleetService) ListBuses() ([]models.Bus, error) {
	return s.Buses.GetAll()
}

// Cities returns the deduplicated, sorted set of route city names.
func (s FleetService) Cities() ([]string, error) {
	buses, err := s.Buses.GetAll()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	cities := []string{}
	for _, bus := range buses {
		if bus.Route == nil {
			continue
		}
		city := utils.TrimOrEmpty(bus.Route.City)
		if city == "" || seen[city] {
			continue
		}
		seen[city] = true
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities, nil
}

// StopNames returns the deduplicated, sorted set of stop names across all
// bus routes.
func (s FleetService) StopNames() ([]string, error) {
	buses, err := s.Buses.GetAll()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	stops := []string{}
	for _, bus := range buses {
		for _, name := range bus.StopNames() {
			name = utils.TrimOrEmpty(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			stops = append(stops, name)
		}
	}
	sort.Strings(stops)
	return stops, nil
}

// Search returns the buses whose stop sequence contains both names with the
// source strictly before the destination.
func (s FleetService) Search(source, destination string) ([]models.Bus, error) {
	buses, err := s.Buses.GetAll()
	if err != nil {
		return nil, err
	}
	result := []models.Bus{}
	for _, bus := range buses {
		if bus.Serves(source, destination) {
			result = append(result, bus)
		}
	}
	return result, nil
}

func (s FleetService) GetBus(id string) (models.Bus, error) {
	return s.Buses.GetByID(id)
}

func (s FleetService) UpdateBus(id string, set repositories.BusUpdate) (models.Bus, error) {
	if set.Capacity != nil && *set.Capacity <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "capacity", Msg: "must be a positive integer"}
	}
	return s.Buses.Update(id, set)
}

// DeleteBus removes the bus and every schedule referencing it. Schedules go
// first; if that step fails the bus is left in place and the error surfaces.
// The two deletes are not atomic, so a failure after the schedule step can
// leave the bus without schedules but still present.
func (s FleetService) DeleteBus(id string) (int64, error) {
	if _, err := s.Buses.GetByID(id); err != nil {
		return 0, err
	}

	removed, err := s.Schedules.DeleteByBus(id)
	if err != nil {
		return 0, err
	}

	if err := s.Buses.Delete(id); err != nil {
		utils.LogEvent("", "fleet", "delete_bus",
			"partial cascade: "+strconv.FormatInt(removed, 10)+" schedules removed but bus delete failed id="+id)
		return removed, err
	}
	utils.LogEvent("", "fleet", "delete_bus", "id="+id+" schedules_removed="+strconv.FormatInt(removed, 10))
	return removed, nil
}
