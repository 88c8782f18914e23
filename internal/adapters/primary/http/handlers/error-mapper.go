package handlers

import (
	"net/http"

	"model-mirror-service/internal/adapters/primary/http/dto"
	"model-mirror-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// mapDomainError writes err with the status its kind (or the provider) dictates.
// Messages reaching here have already been redacted by the service layer.
func mapDomainError(c *gin.Context, err error) {
	status := domain.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("unclassified error")
		c.JSON(status, dto.ErrorResponse{ErrorMessage: "internal server error"})
		return
	}
	c.JSON(status, dto.ErrorResponse{ErrorMessage: err.Error()})
}
