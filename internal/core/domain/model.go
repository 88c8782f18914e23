package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DestinationKeySuffix is appended to every mirrored artifact key.
const DestinationKeySuffix = ".tar.gz"

var roleARNPattern = regexp.MustCompile(`^arn:aws:iam::(\d{12}):role/(.+)$`)

// RoleReference is a parsed cross-account IAM role ARN.
type RoleReference struct {
	ARN       string
	AccountID string
	Path      string
}

// ParseRoleARN validates arn:aws:iam::{AccountId}:role/{RoleNameWithPath}.
func ParseRoleARN(arn string) (RoleReference, error) {
	arn = strings.TrimSpace(arn)
	m := roleARNPattern.FindStringSubmatch(arn)
	if m == nil {
		return RoleReference{}, fmt.Errorf("%w: %q", ErrInvalidRoleARN, arn)
	}
	return RoleReference{ARN: arn, AccountID: m[1], Path: m[2]}, nil
}

func (r RoleReference) String() string {
	return r.ARN
}

// DelegatedCredential is a short-lived credential set obtained for a single
// request. It is never cached or shared between requests.
type DelegatedCredential struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// Expired reports whether the credential is no longer valid at now.
// A zero expiration never expires.
func (c DelegatedCredential) Expired(now time.Time) bool {
	return !c.Expiration.IsZero() && !now.Before(c.Expiration)
}

// ArtifactLocation identifies one physical object in a remote store.
type ArtifactLocation struct {
	Bucket string
	Key    string
}

// ParseS3URI splits s3://bucket/key into an ArtifactLocation.
func ParseS3URI(uri string) (ArtifactLocation, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return ArtifactLocation{}, fmt.Errorf("%w: %q is not an s3:// uri", ErrValidation, uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return ArtifactLocation{}, fmt.Errorf("%w: %q has no bucket or key", ErrValidation, uri)
	}
	return ArtifactLocation{Bucket: bucket, Key: key}, nil
}

func (l ArtifactLocation) URI() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// JobIdentifier returns the training job name embedded in the second path
// segment of a model output key, e.g.
// DeepRacer-SageMaker-rlmdl-123456789012-20230601000000/<job>/output/model.tar.gz.
func (l ArtifactLocation) JobIdentifier() (string, error) {
	parts := strings.Split(l.Key, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: key %q has no training job segment", ErrValidation, l.Key)
	}
	return parts[1], nil
}

// TrainingJobRecord is the subset of training job metadata the engine reads.
type TrainingJobRecord struct {
	Name            string
	HyperParameters map[string]string
	ModelArtifacts  string
}

// ModelDescriptor is the logical identity of one trained model. Uploaded is
// derived from the destination store at resolution time and is only valid
// for that instant.
type ModelDescriptor struct {
	LogicalName     string
	Region          string
	SourceAccountID string
	JobIdentifier   string
	Artifact        ArtifactLocation
	Uploaded        bool
}

func (d ModelDescriptor) DestinationKey() string {
	return DestinationKey(d.LogicalName, d.SourceAccountID, d.Region)
}

// DestinationKey is the persisted naming convention of the destination store.
// Readers of the destination bucket depend on this exact format.
func DestinationKey(logicalName, sourceAccountID, region string) string {
	return logicalName + "-" + sourceAccountID + "-" + region + DestinationKeySuffix
}
