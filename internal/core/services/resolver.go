package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// DefaultNameHyperParameter holds an s3:// path whose fifth segment is the
// model name the console shows, e.g. s3://bucket/prefix/<name>/reward.py.
const DefaultNameHyperParameter = "reward_function_s3_source"

const logicalNameSegment = 4

// ModelInfoResolver maps a training job to its logical model identity.
type ModelInfoResolver struct {
	nameField string
}

func NewModelInfoResolver(nameField string) *ModelInfoResolver {
	if nameField == "" {
		nameField = DefaultNameHyperParameter
	}
	return &ModelInfoResolver{nameField: nameField}
}

// ResolveOptions carries what the caller already knows about a job.
type ResolveOptions struct {
	// Artifact is the bundle location found by a scan. When set, the job's
	// ModelArtifacts field is not consulted.
	Artifact *domain.ArtifactLocation
	// SkipExistence leaves Uploaded false for callers that check the
	// destination themselves.
	SkipExistence bool
}

// Resolve describes jobID in the source account and checks whether its
// destination key is already present in dest.
func (r *ModelInfoResolver) Resolve(
	ctx context.Context,
	source output.SourceAccount,
	dest output.DestinationStore,
	jobID, region, sourceAccountID string,
	opts ResolveOptions,
) (domain.ModelDescriptor, error) {
	// 1. Fetch training job metadata
	job, err := source.DescribeTrainingJob(ctx, jobID)
	if err != nil {
		return domain.ModelDescriptor{}, err
	}

	// 2. Derive the logical name
	name, err := r.LogicalName(job)
	if err != nil {
		return domain.ModelDescriptor{}, fmt.Errorf("training job %s: %w", jobID, err)
	}

	// 3. Locate the model bundle
	artifact, err := r.artifact(job, opts.Artifact)
	if err != nil {
		return domain.ModelDescriptor{}, fmt.Errorf("training job %s: %w", jobID, err)
	}

	desc := domain.ModelDescriptor{
		LogicalName:     name,
		Region:          region,
		SourceAccountID: sourceAccountID,
		JobIdentifier:   jobID,
		Artifact:        artifact,
	}

	// 4. Check the destination
	if !opts.SkipExistence {
		desc.Uploaded, err = Exists(ctx, dest, dest.Bucket(), desc.DestinationKey())
		if err != nil {
			return domain.ModelDescriptor{}, err
		}
	}

	log.WithFields(log.Fields{
		"job":      jobID,
		"model":    name,
		"region":   region,
		"uploaded": desc.Uploaded,
	}).Debug("resolved training job")
	return desc, nil
}

func (r *ModelInfoResolver) artifact(job domain.TrainingJobRecord, known *domain.ArtifactLocation) (domain.ArtifactLocation, error) {
	if known != nil {
		return *known, nil
	}
	if job.ModelArtifacts == "" {
		return domain.ArtifactLocation{}, domain.ErrMissingModelArtifacts
	}
	return domain.ParseS3URI(job.ModelArtifacts)
}

// LogicalName extracts the model name from the configured hyperparameter.
func (r *ModelInfoResolver) LogicalName(job domain.TrainingJobRecord) (string, error) {
	raw, ok := job.HyperParameters[r.nameField]
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingHyperParameter, r.nameField)
	}
	// SageMaker stores hyperparameters JSON encoded, so strings arrive quoted.
	raw = strings.Trim(raw, `"`)

	segments := strings.Split(raw, "/")
	if len(segments) <= logicalNameSegment || segments[logicalNameSegment] == "" {
		return "", fmt.Errorf("%w: %s=%q", domain.ErrMalformedModelPath, r.nameField, raw)
	}
	return segments[logicalNameSegment], nil
}
