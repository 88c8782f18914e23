package awsclient

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-mirror-service/internal/core/domain"
)

type fakeSTS struct {
	input *sts.AssumeRoleInput
	out   *sts.AssumeRoleOutput
	err   error
}

func (f *fakeSTS) AssumeRole(_ context.Context, params *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.input = params
	return f.out, f.err
}

var brokerRole = domain.RoleReference{ARN: "arn:aws:iam::123456789012:role/R", AccountID: "123456789012", Path: "R"}

func TestCredentialBroker_AssumeRole(t *testing.T) {
	expires := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	fake := &fakeSTS{out: &sts.AssumeRoleOutput{Credentials: &types.Credentials{
		AccessKeyId:     aws.String("ASIA"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
		Expiration:      aws.Time(expires),
	}}}
	broker := &credentialBroker{client: fake}

	cred, err := broker.AssumeRole(context.Background(), brokerRole, "model-mirror-1")
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:iam::123456789012:role/R", aws.ToString(fake.input.RoleArn))
	assert.Equal(t, "model-mirror-1", aws.ToString(fake.input.RoleSessionName))
	assert.Equal(t, domain.DelegatedCredential{
		AccessKeyID:     "ASIA",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Expiration:      expires,
	}, cred)
}

func TestCredentialBroker_Failure(t *testing.T) {
	broker := &credentialBroker{client: &fakeSTS{err: responseError(403, "AccessDenied", "denied")}}
	_, err := broker.AssumeRole(context.Background(), brokerRole, "s")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	broker = &credentialBroker{client: &fakeSTS{out: &sts.AssumeRoleOutput{}}}
	_, err = broker.AssumeRole(context.Background(), brokerRole, "s")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}
