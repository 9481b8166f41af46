package worker

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
	workersvc "github.com/nandaputra/homecrew/internal/service/worker"
)

func Register(rg *gin.RouterGroup, svc *workersvc.Service) {
	rg.POST("/register", registerWorker(svc))
	rg.GET("/", listWorkers(svc))
	rg.GET("/:id", getWorker(svc))
	rg.PATCH("/:id/availability", setAvailability(svc))
	rg.PUT("/:id/location", updateLocation(svc))
}

type registerReq struct {
	Name            string             `json:"name" binding:"required"`
	Phone           string             `json:"phone" binding:"required"`
	Specializations []catalog.Category `json:"specializations" binding:"required"`
}

func registerWorker(svc *workersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		w, err := svc.Register(c.Request.Context(), req.Name, req.Phone, req.Specializations)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, w)
	}
}

func listWorkers(svc *workersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainworker.ListFilters

		if v := c.Query("availability"); v != "" {
			a := domainworker.Availability(v)
			filters.Availability = &a
		}
		if v := c.Query("category"); v != "" {
			cat := catalog.Category(v)
			filters.Category = &cat
		}

		workers, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if workers == nil {
			workers = []domainworker.Worker{}
		}
		c.JSON(http.StatusOK, workers)
	}
}

func getWorker(svc *workersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		w, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, w)
	}
}

type availabilityReq struct {
	Availability domainworker.Availability `json:"availability" binding:"required"`
}

func setAvailability(svc *workersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req availabilityReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := svc.SetAvailability(c.Request.Context(), id, req.Availability); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, portworker.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type locationReq struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func updateLocation(svc *workersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req locationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := svc.UpdateLocation(c.Request.Context(), id, geo.Point{Lat: *req.Lat, Lng: *req.Lng}); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, portworker.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
