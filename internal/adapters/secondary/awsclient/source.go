package awsclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/smithy-go"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

type sagemakerAPI interface {
	DescribeTrainingJob(ctx context.Context, params *sagemaker.DescribeTrainingJobInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeTrainingJobOutput, error)
}

// sourceAccount reads one delegated account under one credential set.
type sourceAccount struct {
	*objectStore
	sagemaker sagemakerAPI
}

func (a *sourceAccount) DescribeTrainingJob(ctx context.Context, name string) (domain.TrainingJobRecord, error) {
	out, err := a.sagemaker.DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(name),
	})
	if err != nil {
		return domain.TrainingJobRecord{}, translateDescribe(err)
	}

	rec := domain.TrainingJobRecord{
		Name:            aws.ToString(out.TrainingJobName),
		HyperParameters: out.HyperParameters,
	}
	if out.ModelArtifacts != nil {
		rec.ModelArtifacts = aws.ToString(out.ModelArtifacts.S3ModelArtifacts)
	}
	return rec, nil
}

// translateDescribe keeps the provider status and message of a missing job
// and only reclassifies it; 404 is used when no status came back.
func translateDescribe(err error) error {
	out := translate(domain.OpDescribeTrainingJob, err)
	var pe *domain.ProviderError
	if isMissingTrainingJob(err) && errors.As(out, &pe) {
		pe.Kind = domain.ErrTrainingJobNotFound
		if pe.StatusCode == 0 {
			pe.StatusCode = http.StatusNotFound
		}
	}
	return out
}

// SageMaker reports unknown jobs as a ValidationException, not a 404.
func isMissingTrainingJob(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ResourceNotFound":
		return true
	case "ValidationException":
		return strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "not found")
	}
	return false
}

type sourceAccountFactory struct {
	base aws.Config
}

// NewSourceAccountFactory builds per-request source clients. base supplies
// transport settings only; its credentials are never used.
func NewSourceAccountFactory(base aws.Config) output.SourceAccountFactory {
	return &sourceAccountFactory{base: base}
}

func (f *sourceAccountFactory) ForCredential(_ context.Context, cred domain.DelegatedCredential, region string) (output.SourceAccount, error) {
	cfg := delegatedConfig(f.base, cred, region)
	return &sourceAccount{
		objectStore: newObjectStore(cfg),
		sagemaker:   sagemaker.NewFromConfig(cfg),
	}, nil
}
