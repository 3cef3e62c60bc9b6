package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup defines a group of routes that can be registered under the API group.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// PlateRoutes registers the plate optimization routes.
type PlateRoutes struct {
	handler *Handler
}

// NewPlateRoutes creates a new plate route group.
func NewPlateRoutes(handler *Handler) *PlateRoutes {
	return &PlateRoutes{handler: handler}
}

// RegisterRoutes registers the optimization endpoints.
func (r *PlateRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/optimize", r.handler.Optimize)
	rg.GET("/jobs/:id", r.handler.JobStatus)
	rg.GET("/runs", r.handler.ListRuns)
}
