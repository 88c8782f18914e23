package ports

import (
	"context"

	"model-mirror-service/internal/core/domain"
)

// CredentialBroker exchanges a delegated role for a short-lived credential set.
type CredentialBroker interface {
	// AssumeRole returns credentials scoped to role. Rejections surface as
	// errors matching domain.ErrAuthorization.
	AssumeRole(ctx context.Context, role domain.RoleReference, sessionName string) (domain.DelegatedCredential, error)
}
