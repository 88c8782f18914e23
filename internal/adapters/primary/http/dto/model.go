package dto

import (
	"model-mirror-service/internal/core/domain"
)

// Field names follow the API the existing front end already consumes.

type ModelResponse struct {
	ModelName       string `json:"ModelName"`
	Region          string `json:"Region"`
	SourceAccountID string `json:"SourceAccountId"`
	TrainingJobName string `json:"TrainingJobName"`
	Uploaded        bool   `json:"Uploaded"`
	DestinationKey  string `json:"DestinationKey"`
}

type ListModelsResponse struct {
	Models []ModelResponse `json:"models"`
}

type ModelActionRequest struct {
	RoleARN string `json:"role_arn" binding:"required"`
	Action  string `json:"action" binding:"required,oneof=Upload Delete"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

func ToModelResponse(d domain.ModelDescriptor) ModelResponse {
	return ModelResponse{
		ModelName:       d.LogicalName,
		Region:          d.Region,
		SourceAccountID: d.SourceAccountID,
		TrainingJobName: d.JobIdentifier,
		Uploaded:        d.Uploaded,
		DestinationKey:  d.DestinationKey(),
	}
}

func ToListModelsResponse(descs []domain.ModelDescriptor) ListModelsResponse {
	items := make([]ModelResponse, 0, len(descs))
	for _, d := range descs {
		items = append(items, ToModelResponse(d))
	}
	return ListModelsResponse{Models: items}
}
