package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mybus/internal/domain/models"
	"mybus/internal/repositories"
	"mybus/internal/services"
)

type SchedulesHandler struct {
	Schedules services.ScheduleService
}

type scheduleCreateRequest struct {
	BusID        string              `json:"busId"`
	DaysActive   []string            `json:"daysActive"`
	StopTimings  []models.StopTiming `json:"stop_timings"`
	FrequencyMin *int                `json:"frequencyMin"`
}

// POST /schedules
func (h SchedulesHandler) Create(c *gin.Context) {
	var req scheduleCreateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	schedule, err := h.Schedules.Create(services.CreateScheduleInput{
		BusID:        req.BusID,
		DaysActive:   req.DaysActive,
		StopTimings:  req.StopTimings,
		FrequencyMin: req.FrequencyMin,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "schedule created successfully",
		"schedule": schedule,
	})
}

// GET /schedules?busId=
func (h SchedulesHandler) List(c *gin.Context) {
	schedules, err := h.Schedules.List(c.Query("busId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// GET /schedules/:id
func (h SchedulesHandler) Get(c *gin.Context) {
	schedule, err := h.Schedules.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type scheduleUpdateRequest struct {
	BusID        *string              `json:"busId"`
	DaysActive   *[]string            `json:"daysActive"`
	StopTimings  *[]models.StopTiming `json:"stop_timings"`
	FrequencyMin *int                 `json:"frequencyMin"`
}

// PUT /schedules/:id
func (h SchedulesHandler) Update(c *gin.Context) {
	var req scheduleUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	schedule, err := h.Schedules.Update(c.Param("id"), repositories.ScheduleUpdate{
		BusID:        req.BusID,
		DaysActive:   req.DaysActive,
		StopTimings:  req.StopTimings,
		FrequencyMin: req.FrequencyMin,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "schedule updated successfully",
		"schedule": schedule,
	})
}

// DELETE /schedules/:id
func (h SchedulesHandler) Delete(c *gin.Context) {
	if err := h.Schedules.Delete(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule deleted successfully"})
}
