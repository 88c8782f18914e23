package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

type credentialBroker struct {
	client stsAPI
}

// NewCredentialBroker creates an STS backed CredentialBroker.
func NewCredentialBroker(cfg aws.Config) output.CredentialBroker {
	return &credentialBroker{client: sts.NewFromConfig(cfg)}
}

func (b *credentialBroker) AssumeRole(ctx context.Context, role domain.RoleReference, sessionName string) (domain.DelegatedCredential, error) {
	out, err := b.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(role.ARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return domain.DelegatedCredential{}, translate(domain.OpAssumeRole, err)
	}
	if out.Credentials == nil {
		return domain.DelegatedCredential{}, &domain.ProviderError{
			Kind:    domain.ErrAuthorization,
			Op:      domain.OpAssumeRole,
			Message: "An error occurred when calling the AssumeRole operation: no credentials returned",
		}
	}

	c := out.Credentials
	return domain.DelegatedCredential{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
		Expiration:      aws.ToTime(c.Expiration),
	}, nil
}
