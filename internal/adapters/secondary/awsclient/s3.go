package awsclient

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// objectStore wraps one S3 client. Buckets living outside the client's region
// are addressed with a per-call region override.
type objectStore struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader

	mu      sync.Mutex
	regions map[string]string
}

func newObjectStore(cfg aws.Config) *objectStore {
	client := s3.NewFromConfig(cfg)
	return &objectStore{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		regions:    make(map[string]string),
	}
}

func (s *objectStore) rememberRegion(bucket, region string) {
	if region == "" {
		return
	}
	s.mu.Lock()
	s.regions[bucket] = region
	s.mu.Unlock()
}

// regionFor returns the bucket's region, asking S3 once per bucket.
func (s *objectStore) regionFor(ctx context.Context, bucket string) string {
	s.mu.Lock()
	region, ok := s.regions[bucket]
	s.mu.Unlock()
	if ok {
		return region
	}

	region, err := manager.GetBucketRegion(ctx, s.client, bucket)
	if err != nil {
		log.WithError(err).WithField("bucket", bucket).Debug("bucket region lookup failed, using client region")
		region = s.client.Options().Region
	}
	s.rememberRegion(bucket, region)
	return region
}

func (s *objectStore) inRegion(ctx context.Context, bucket string) func(*s3.Options) {
	region := s.regionFor(ctx, bucket)
	return func(o *s3.Options) {
		o.Region = region
	}
}

func (s *objectStore) HeadObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s.inRegion(ctx, bucket))
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrObjectNotFound)
	}
	return translate(domain.OpHeadObject, err)
}

func (s *objectStore) Download(ctx context.Context, loc domain.ArtifactLocation, w io.WriterAt) (int64, error) {
	regionOpt := s.inRegion(ctx, loc.Bucket)
	n, err := s.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}, func(d *manager.Downloader) {
		d.ClientOptions = append(d.ClientOptions, regionOpt)
	})
	if err != nil {
		return 0, translate(domain.OpGetObject, err)
	}
	return n, nil
}

func (s *objectStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	regionOpt := s.inRegion(ctx, bucket)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx, regionOpt)
		if err != nil {
			return nil, translate(domain.OpListObjects, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *objectStore) ListBuckets(ctx context.Context) ([]string, error) {
	paginator := s3.NewListBucketsPaginator(s.client, &s3.ListBucketsInput{})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translate(domain.OpListBuckets, err)
		}
		for _, b := range page.Buckets {
			name := aws.ToString(b.Name)
			s.rememberRegion(name, aws.ToString(b.BucketRegion))
			names = append(names, name)
		}
	}
	return names, nil
}

// ============================================================================
// Destination Store
// ============================================================================

type destinationStore struct {
	*objectStore
	bucket string
}

// NewDestinationStore creates the central store client. It runs under the
// engine's own identity and may be shared between requests.
func NewDestinationStore(cfg aws.Config, bucket string) output.DestinationStore {
	return &destinationStore{objectStore: newObjectStore(cfg), bucket: bucket}
}

func (d *destinationStore) Bucket() string {
	return d.bucket
}

func (d *destinationStore) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	regionOpt := d.inRegion(ctx, bucket)
	_, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/gzip"),
	}, func(u *manager.Uploader) {
		u.ClientOptions = append(u.ClientOptions, regionOpt)
	})
	if err != nil {
		return translate(domain.OpPutObject, err)
	}
	return nil
}

func (d *destinationStore) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, d.inRegion(ctx, bucket))
	if err != nil {
		return translate(domain.OpDeleteObject, err)
	}
	return nil
}

// NewObjectReader returns a download-only client running under cfg.
func NewObjectReader(cfg aws.Config) output.ObjectReader {
	return newObjectStore(cfg)
}
