package ports

import (
	"context"
	"io"

	"model-mirror-service/internal/core/domain"
)

// ============================================================================
// Object Stores
// ============================================================================

// ObjectProber performs metadata-only existence probes.
type ObjectProber interface {
	// HeadObject returns nil when the object exists and an error matching
	// domain.ErrObjectNotFound when it does not. Any other error is a failure.
	HeadObject(ctx context.Context, bucket, key string) error
}

// ObjectReader downloads whole objects.
type ObjectReader interface {
	Download(ctx context.Context, loc domain.ArtifactLocation, w io.WriterAt) (int64, error)
}

// DestinationStore is the central read-write store mirrored artifacts land in.
type DestinationStore interface {
	ObjectProber
	ObjectReader

	// Bucket is the configured destination bucket.
	Bucket() string

	Upload(ctx context.Context, bucket, key string, body io.Reader) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// ============================================================================
// Source Account
// ============================================================================

// SourceAccount is a read-only view of the delegated account, bound to one
// credential set and region. Instances must not outlive the request that
// created them.
type SourceAccount interface {
	ObjectReader

	ListBuckets(ctx context.Context) ([]string, error)

	// ListObjects returns every key under prefix, paging internally.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	// DescribeTrainingJob returns an error matching domain.ErrTrainingJobNotFound
	// when the job does not exist.
	DescribeTrainingJob(ctx context.Context, name string) (domain.TrainingJobRecord, error)
}

// SourceAccountFactory builds SourceAccount clients from delegated credentials.
type SourceAccountFactory interface {
	ForCredential(ctx context.Context, cred domain.DelegatedCredential, region string) (SourceAccount, error)
}
