package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mybus/internal/domain"
	"mybus/internal/domain/models"
	"mybus/internal/repositories"
	"mybus/internal/services"
)

type BusesHandler struct {
	Fleet services.FleetService
}

type busCreateRequest struct {
	BusCategory     string         `json:"busCategory" binding:"required"`
	BusNumber       string         `json:"busNumber" binding:"required"`
	Type            string         `json:"type" binding:"required"`
	Capacity        any            `json:"capacity" binding:"required"`
	RegistrationNo  string         `json:"registrationNo" binding:"required"`
	GPSDeviceID     string         `json:"gpsDeviceId" binding:"required"`
	CurrentLocation map[string]any `json:"currentLocation"`
	Status          string         `json:"status"`
	Route           *models.Route  `json:"route"`
}

// POST /buses
func (h BusesHandler) Create(c *gin.Context) {
	var req busCreateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	capacity, ok := coerceInt(req.Capacity)
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "capacity", Msg: "must be an integer"})
		return
	}

	bus, err := h.Fleet.CreateBus(services.CreateBusInput{
		BusCategory:     req.BusCategory,
		BusNumber:       req.BusNumber,
		Type:            req.Type,
		Capacity:        capacity,
		RegistrationNo:  req.RegistrationNo,
		GPSDeviceID:     req.GPSDeviceID,
		CurrentLocation: req.CurrentLocation,
		Status:          req.Status,
		Route:           req.Route,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "bus added successfully",
		"bus":     bus,
	})
}

// GET /buses?mode=all|cities|stops|search&source=&destination=
func (h BusesHandler) List(c *gin.Context) {
	mode := strings.TrimSpace(c.DefaultQuery("mode", "all"))

	switch mode {
	case "", "all":
		buses, err := h.Fleet.ListBuses()
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"buses": buses})

	case "cities":
		cities, err := h.Fleet.Cities()
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cities": cities})

	case "stops":
		stops, err := h.Fleet.StopNames()
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stops": stops})

	case "search":
		source := strings.TrimSpace(c.Query("source"))
		destination := strings.TrimSpace(c.Query("destination"))
		if source == "" || destination == "" {
			RespondDomainError(c, domain.ValidationError{Msg: "invalid mode or missing parameters"})
			return
		}
		buses, err := h.Fleet.Search(source, destination)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"buses": buses})

	default:
		RespondDomainError(c, domain.ValidationError{Msg: "invalid mode or missing parameters"})
	}
}

// GET /buses/:id
func (h BusesHandler) Get(c *gin.Context) {
	bus, err := h.Fleet.GetBus(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

type busUpdateRequest struct {
	BusCategory     *string         `json:"busCategory"`
	BusNumber       *string         `json:"busNumber"`
	Type            *string         `json:"type"`
	Capacity        any             `json:"capacity"`
	RegistrationNo  *string         `json:"registrationNo"`
	GPSDeviceID     *string         `json:"gpsDeviceId"`
	CurrentLocation *map[string]any `json:"currentLocation"`
	Status          *string         `json:"status"`
	Route           *models.Route   `json:"route"`
}

// PUT /buses/:id
func (h BusesHandler) Update(c *gin.Context) {
	var req busUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	set := repositories.BusUpdate{
		BusCategory:     req.BusCategory,
		BusNumber:       req.BusNumber,
		Type:            req.Type,
		RegistrationNo:  req.RegistrationNo,
		GPSDeviceID:     req.GPSDeviceID,
		CurrentLocation: req.CurrentLocation,
		Status:          req.Status,
		Route:           req.Route,
	}
	if req.Capacity != nil {
		capacity, ok := coerceInt(req.Capacity)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "capacity", Msg: "must be an integer"})
			return
		}
		set.Capacity = &capacity
	}

	bus, err := h.Fleet.UpdateBus(c.Param("id"), set)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "bus updated successfully",
		"bus":     bus,
	})
}

// DELETE /buses/:id
func (h BusesHandler) Delete(c *gin.Context) {
	removed, err := h.Fleet.DeleteBus(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "bus and all related schedules deleted successfully",
		"schedulesRemoved": removed,
	})
}
