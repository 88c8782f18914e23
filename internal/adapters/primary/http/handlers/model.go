package handlers

import (
	"net/http"

	"model-mirror-service/internal/adapters/primary/http/dto"
	"model-mirror-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListModels(c *gin.Context) {
	role, err := domain.ParseRoleARN(c.Query("RoleArn"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	region := c.DefaultQuery("Region", h.defaultRegion)

	models, err := h.mirrorSvc.ListModels(c.Request.Context(), role, region)
	if err != nil {
		log.WithError(err).WithField("account", role.AccountID).Error("list models failed")
		mapDomainError(c, err)
		return
	}
	if len(models) == 0 {
		log.WithFields(log.Fields{"account": role.AccountID, "region": region}).
			Warn("no models found; the account may have no models or the role may lack permissions")
	}

	c.JSON(http.StatusOK, dto.ToListModelsResponse(models))
}

func (h *Handler) UploadModel(c *gin.Context) {
	h.transfer(c, c.Query("RoleArn"), string(domain.ActionUpload))
}

func (h *Handler) DeleteModel(c *gin.Context) {
	h.transfer(c, c.Query("RoleArn"), string(domain.ActionDelete))
}

func (h *Handler) ModelAction(c *gin.Context) {
	var req dto.ModelActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{ErrorMessage: err.Error()})
		return
	}
	h.transfer(c, req.RoleARN, req.Action)
}

func (h *Handler) transfer(c *gin.Context, roleARN, action string) {
	role, err := domain.ParseRoleARN(roleARN)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	act, err := domain.ParseAction(action)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	req := domain.TransferRequest{
		JobIdentifier: c.Param("job_id"),
		Region:        c.Param("region"),
		Role:          role,
		Action:        act,
	}

	outcome, err := h.mirrorSvc.Transfer(c.Request.Context(), req)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"job":    req.JobIdentifier,
			"action": req.Action,
		}).Error("model transfer failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: outcome.Message()})
}
