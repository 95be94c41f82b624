package services

import (
	"strings"

	"mybus/internal/domain"
	"mybus/internal/domain/models"
	"mybus/internal/repositories"
	"mybus/internal/utils"
)

// ScheduleService manages time-tables. Schedules reference a bus id by
// value; the reference is deliberately not checked against the fleet, and
// stop timings are not cross-validated against the bus route.
type ScheduleService struct {
	Schedules repositories.ScheduleRepository
}

type CreateScheduleInput struct {
	BusID        string
	DaysActive   []string
	StopTimings  []models.StopTiming
	FrequencyMin *int
}

func (s ScheduleService) Create(in CreateScheduleInput) (models.Schedule, error) {
	missing := []string{}
	if utils.TrimOrEmpty(in.BusID) == "" {
		missing = append(missing, "busId")
	}
	if len(in.DaysActive) == 0 {
		missing = append(missing, "daysActive")
	}
	if len(in.StopTimings) == 0 {
		missing = append(missing, "stop_timings")
	}
	if len(missing) > 0 {
		return models.Schedule{}, domain.ValidationError{Msg: "missing fields: " + strings.Join(missing, ", ")}
	}

	schedule, err := s.Schedules.Create(models.Schedule{
		BusID:        utils.TrimOrEmpty(in.BusID),
		DaysActive:   in.DaysActive,
		StopTimings:  in.StopTimings,
		FrequencyMin: in.FrequencyMin,
	})
	if err != nil {
		return models.Schedule{}, err
	}
	utils.LogEvent("", "schedule", "create", "id="+schedule.ID)
	return schedule, nil
}

// List returns all schedules, or only those of one bus when busID is set.
func (s ScheduleService) List(busID string) ([]models.Schedule, error) {
	if utils.TrimOrEmpty(busID) != "" {
		return s.Schedules.GetByBus(busID)
	}
	return s.Schedules.GetAll()
}

func (s ScheduleService) Get(id string) (models.Schedule, error) {
	return s.Schedules.GetByID(id)
}

func (s ScheduleService) Update(id string, set repositories.ScheduleUpdate) (models.Schedule, error) {
	if _, err := s.Schedules.GetByID(id); err != nil {
		return models.Schedule{}, err
	}
	return s.Schedules.Update(id, set)
}

func (s ScheduleService) Delete(id string) error {
	return s.Schedules.Delete(id)
}
