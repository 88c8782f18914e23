package awsclient

import (
	"errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	"model-mirror-service/internal/core/domain"
)

var authorizationCodes = map[string]bool{
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"AllAccessDisabled":           true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"InvalidAccessKeyId":          true,
	"InvalidClientTokenId":        true,
	"SignatureDoesNotMatch":       true,
	"UnrecognizedClientException": true,
}

var notFoundCodes = map[string]bool{
	"NotFound":          true,
	"NoSuchKey":         true,
	"NoSuchBucket":      true,
	"ResourceNotFound":  true,
	"NonExistentQueue":  true,
	"QueueDoesNotExist": true,
}

// translate normalizes an SDK error from op into a *domain.ProviderError,
// keeping the provider's HTTP status. The message follows the familiar
// "An error occurred (Code) when calling the Op operation: ..." form and still
// contains the provider text verbatim; callers redact it.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}

	out := &domain.ProviderError{Kind: domain.ErrProvider, Op: op, Message: err.Error()}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		out.StatusCode = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		out.Code = apiErr.ErrorCode()
		out.Message = fmt.Sprintf("An error occurred (%s) when calling the %s operation: %s", out.Code, op, apiErr.ErrorMessage())
	}

	switch {
	case op == domain.OpAssumeRole,
		authorizationCodes[out.Code],
		out.StatusCode == http.StatusUnauthorized,
		out.StatusCode == http.StatusForbidden:
		out.Kind = domain.ErrAuthorization
	case notFoundCodes[out.Code], out.StatusCode == http.StatusNotFound:
		out.Kind = domain.ErrNotFound
	}
	return out
}

func isNotFound(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && notFoundCodes[apiErr.ErrorCode()]
}
