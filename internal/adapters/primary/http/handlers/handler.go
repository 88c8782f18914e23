package handlers

import (
	"model-mirror-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	mirrorSvc     *services.MirrorService
	defaultRegion string
}

func New(mirrorSvc *services.MirrorService, defaultRegion string) *Handler {
	if defaultRegion == "" {
		defaultRegion = "us-east-1"
	}
	return &Handler{
		mirrorSvc:     mirrorSvc,
		defaultRegion: defaultRegion,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Discovery
	r.GET("/models", h.ListModels)

	// Transfer (GET uploads, DELETE removes)
	r.GET("/models/:region/:job_id", h.UploadModel)
	r.DELETE("/models/:region/:job_id", h.DeleteModel)
	r.POST("/models/:region/:job_id/action", h.ModelAction)
}
