package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	catalogsvc "github.com/nandaputra/homecrew/internal/service/catalog"
)

func Register(rg *gin.RouterGroup, svc *catalogsvc.Service) {
	rg.POST("/", createService(svc))
	rg.GET("/", listServices(svc))
	rg.GET("/:id", getService(svc))
}

type createServiceReq struct {
	Name            string                 `json:"name" binding:"required"`
	Category        domaincatalog.Category `json:"category" binding:"required"`
	BasePrice       int64                  `json:"base_price" binding:"required"`
	DurationMinutes int                    `json:"duration_minutes" binding:"required"`
}

func createService(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createServiceReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s, err := svc.Create(c.Request.Context(), req.Name, req.Category, req.BasePrice, req.DurationMinutes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func listServices(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := c.Query("all") != "true"

		services, err := svc.List(c.Request.Context(), activeOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if services == nil {
			services = []domaincatalog.Service{}
		}
		c.JSON(http.StatusOK, services)
	}
}

func getService(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		s, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}
