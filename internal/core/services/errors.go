package services

import (
	"errors"
	"regexp"

	"model-mirror-service/internal/core/domain"
)

// principalPattern matches the caller principal STS and IAM embed in
// authorization failures, e.g. "User: arn:aws:sts::111122223333:assumed-role/engine/fn".
var principalPattern = regexp.MustCompile(`User:\sarn:\S+`)

// SanitizeError redacts the engine's own principal from provider messages.
// Failures of the credential exchange itself get a static placeholder; later
// failures, made under the delegated identity, echo the role the caller supplied.
func SanitizeError(err error, role domain.RoleReference) error {
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		return err
	}
	replacement := "Role: " + role.ARN
	if pe.Op == domain.OpAssumeRole {
		replacement = "User"
	}
	sanitized := *pe
	sanitized.Message = principalPattern.ReplaceAllLiteralString(pe.Message, replacement)
	return &sanitized
}
