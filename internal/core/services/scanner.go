package services

import (
	"context"
	"iter"
	"strings"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// Defaults for DeepRacer training output.
const (
	DefaultBucketPrefix = "aws-deepracer-"
	DefaultKeyPrefix    = "DeepRacer-SageMaker-rlmdl-"
	DefaultKeySuffix    = "model.tar.gz"
)

type ScanConfig struct {
	BucketPrefix string
	KeyPrefix    string
	KeySuffix    string
}

// CatalogScanner finds completed model bundles in a source account.
type CatalogScanner struct {
	cfg ScanConfig
}

func NewCatalogScanner(cfg ScanConfig) *CatalogScanner {
	if cfg.BucketPrefix == "" {
		cfg.BucketPrefix = DefaultBucketPrefix
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.KeySuffix == "" {
		cfg.KeySuffix = DefaultKeySuffix
	}
	return &CatalogScanner{cfg: cfg}
}

// Scan yields every matching artifact visible to source. The sequence is lazy
// and restartable: each range over it lists the account again. Iteration stops
// at the first error, which is yielded once.
func (s *CatalogScanner) Scan(ctx context.Context, source output.SourceAccount) iter.Seq2[domain.ArtifactLocation, error] {
	return func(yield func(domain.ArtifactLocation, error) bool) {
		buckets, err := source.ListBuckets(ctx)
		if err != nil {
			yield(domain.ArtifactLocation{}, err)
			return
		}

		for _, bucket := range buckets {
			if !strings.HasPrefix(bucket, s.cfg.BucketPrefix) {
				continue
			}

			keys, err := source.ListObjects(ctx, bucket, s.cfg.KeyPrefix)
			if err != nil {
				yield(domain.ArtifactLocation{}, err)
				return
			}

			for _, key := range keys {
				// in-progress checkpoints share the prefix but not the suffix
				if !strings.HasPrefix(key, s.cfg.KeyPrefix) || !strings.HasSuffix(key, s.cfg.KeySuffix) {
					continue
				}
				if !yield(domain.ArtifactLocation{Bucket: bucket, Key: key}, nil) {
					return
				}
			}
		}
	}
}
