package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"model-mirror-service/internal/core/domain"
)

// LoadEngineConfig loads the engine's own identity from the default chain.
// Only the destination store, STS and the mirror queue run under it.
func LoadEngineConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// delegatedConfig derives a config that signs with cred in region and
// shares nothing mutable with base.
func delegatedConfig(base aws.Config, cred domain.DelegatedCredential, region string) aws.Config {
	cfg := base.Copy()
	cfg.Region = region
	cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cred.AccessKeyID, cred.SecretAccessKey, cred.SessionToken,
	))
	return cfg
}
