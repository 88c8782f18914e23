package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error Taxonomy
// ============================================================================

// Kinds. Every error leaving the engine matches exactly one of these via errors.Is.
var (
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
	ErrProvider      = errors.New("provider error")
	ErrValidation    = errors.New("validation error")
)

// ErrObjectNotFound is returned by object store adapters for a missing key.
// It is an expected outcome and is converted to a boolean by the existence check.
var ErrObjectNotFound = fmt.Errorf("%w: object does not exist", ErrNotFound)

// ============================================================================
// Request Validation Errors
// ============================================================================

var (
	ErrInvalidRoleARN = fmt.Errorf("%w: role arn must be in the format arn:aws:iam::{AccountId}:role/{RoleNameWithPath}", ErrValidation)
	ErrInvalidAction  = fmt.Errorf("%w: action must be Upload or Delete", ErrValidation)
	ErrMissingJobID   = fmt.Errorf("%w: training job id is required", ErrValidation)
	ErrMissingRegion  = fmt.Errorf("%w: region is required", ErrValidation)
)

// ============================================================================
// Metadata Errors
// ============================================================================

var (
	ErrMissingHyperParameter = fmt.Errorf("%w: training job hyperparameter is missing", ErrValidation)
	ErrMalformedModelPath    = fmt.Errorf("%w: training job hyperparameter has no model name segment", ErrValidation)
	ErrMissingModelArtifacts = fmt.Errorf("%w: training job has no model artifacts", ErrValidation)
	ErrTrainingJobNotFound   = fmt.Errorf("%w: training job does not exist", ErrNotFound)
)

// ============================================================================
// Local Mirror Errors
// ============================================================================

var (
	ErrMalformedEvent = errors.New("malformed storage event notification")
	ErrUnsafeKey      = errors.New("object key escapes the local folder")
)

// Remote operation names recorded on ProviderError.Op.
const (
	OpAssumeRole          = "AssumeRole"
	OpListBuckets         = "ListBuckets"
	OpListObjects         = "ListObjectsV2"
	OpDescribeTrainingJob = "DescribeTrainingJob"
	OpHeadObject          = "HeadObject"
	OpGetObject           = "GetObject"
	OpPutObject           = "PutObject"
	OpDeleteObject        = "DeleteObject"
	OpReceiveMessage      = "ReceiveMessage"
	OpDeleteMessage       = "DeleteMessage"
)

// ProviderError is a remote call failure normalized into the taxonomy above.
// Message carries the provider text and may name the caller principal until
// it has been redacted.
type ProviderError struct {
	Kind       error
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// StatusCode returns the HTTP status a caller should see for err.
// Provider supplied codes win; otherwise the kind decides.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode > 0 {
		return pe.StatusCode
	}
	switch {
	case errors.Is(err, ErrInvalidRoleARN),
		errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrMissingJobID),
		errors.Is(err, ErrMissingRegion):
		return 400
	case errors.Is(err, ErrAuthorization):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrValidation):
		return 422
	case errors.Is(err, ErrProvider):
		return 502
	}
	return 500
}
