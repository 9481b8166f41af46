package order

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	assignersvc "github.com/nandaputra/homecrew/internal/service/assigner"
	ordersvc "github.com/nandaputra/homecrew/internal/service/order"
)

func Register(rg *gin.RouterGroup, svc *ordersvc.Service) {
	rg.POST("/", createOrder(svc))
	rg.GET("/", listOrders(svc))
	rg.GET("/:id", getOrder(svc))
	rg.GET("/track/:code", trackOrder(svc))
	rg.POST("/:id/confirm", confirmOrder(svc))
	rg.POST("/:id/assign", assignOrder(svc))
	rg.PATCH("/:id", updateOrderStatus(svc))
}

type createOrderReq struct {
	ServiceID     uuid.UUID           `json:"service_id" binding:"required"`
	CustomerName  string              `json:"customer_name" binding:"required"`
	CustomerPhone string              `json:"customer_phone" binding:"required"`
	Lat           *float64            `json:"lat" binding:"required"`
	Lng           *float64            `json:"lng" binding:"required"`
	Address       string              `json:"address" binding:"required"`
	Urgency       domainorder.Urgency `json:"urgency"`
	ScheduledAt   *time.Time          `json:"scheduled_at"`
}

func createOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		o, err := svc.Create(c.Request.Context(), req.ServiceID, req.CustomerName, req.CustomerPhone,
			geo.Point{Lat: *req.Lat, Lng: *req.Lng}, req.Address, req.Urgency, req.ScheduledAt)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, portcatalog.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// confirmOrder runs the interactive assignment path. The response always
// carries the order; when no worker matched the order stays confirmed and
// the sweep retries it later.
func confirmOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		o, err := svc.Confirm(c.Request.Context(), id)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, assignersvc.ErrInvalidLocation):
				status = http.StatusBadRequest
			case errors.Is(err, portcatalog.ErrNotFound), errors.Is(err, portorder.ErrNotFound):
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		resp := gin.H{"order": o}
		if o.WorkerID == nil {
			resp["assignment"] = "pending"
		} else {
			resp["assignment"] = "assigned"
		}
		c.JSON(http.StatusOK, resp)
	}
}

func assignOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if err := svc.Assign(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		o, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func listOrders(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainorder.ListFilters

		if v := c.Query("status"); v != "" {
			s := domainorder.Status(v)
			filters.Status = &s
		}
		if v := c.Query("worker_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid worker_id"})
				return
			}
			filters.WorkerID = &id
		}
		if c.Query("unassigned") == "true" {
			filters.Unassigned = true
		}

		orders, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if orders == nil {
			orders = []domainorder.Order{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

func getOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		o, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func trackOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Track(c.Request.Context(), c.Param("code"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type updateStatusReq struct {
	StatusFrom domainorder.Status `json:"status_from" binding:"required"`
	StatusTo   domainorder.Status `json:"status_to" binding:"required"`
	Note       string             `json:"note"`
}

func updateOrderStatus(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := svc.UpdateStatus(c.Request.Context(), id, req.StatusFrom, req.StatusTo, req.Note); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		o, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
