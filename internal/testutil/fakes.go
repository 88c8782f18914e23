package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// WriterAtBuffer is an in-memory io.WriterAt.
type WriterAtBuffer struct {
	mu   sync.Mutex
	data []byte
}

func (b *WriterAtBuffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	end := int(off) + len(p)
	if end > len(b.data) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[off:], p)
	return len(p), nil
}

func (b *WriterAtBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// MemoryStore is an in-memory object store that can stand in for both the
// source account and the destination store.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]map[string][]byte
	jobs    map[string]domain.TrainingJobRecord
	Heads   int
	Writes  int
	Deletes int
}

var (
	_ output.DestinationStore = (*MemoryStore)(nil)
	_ output.SourceAccount    = (*MemoryStore)(nil)
)

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]map[string][]byte),
		jobs:    make(map[string]domain.TrainingJobRecord),
	}
}

func (s *MemoryStore) Put(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string][]byte)
	}
	s.objects[bucket][key] = append([]byte(nil), data...)
}

func (s *MemoryStore) Get(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket][key]
	return data, ok
}

func (s *MemoryStore) AddTrainingJob(job domain.TrainingJobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = job
}

func (s *MemoryStore) Bucket() string {
	return s.bucket
}

func (s *MemoryStore) HeadObject(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	s.Heads++
	s.mu.Unlock()
	if _, ok := s.Get(bucket, key); !ok {
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrObjectNotFound)
	}
	return nil
}

func (s *MemoryStore) Download(_ context.Context, loc domain.ArtifactLocation, w io.WriterAt) (int64, error) {
	data, ok := s.Get(loc.Bucket, loc.Key)
	if !ok {
		return 0, &domain.ProviderError{Kind: domain.ErrNotFound, Op: domain.OpGetObject, StatusCode: 404, Message: "NoSuchKey"}
	}
	n, err := w.WriteAt(data, 0)
	return int64(n), err
}

func (s *MemoryStore) Upload(_ context.Context, bucket, key string, body io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.Put(bucket, key, buf.Bytes())
	s.mu.Lock()
	s.Writes++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteObject(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects[bucket], key)
	s.Deletes++
	return nil
}

func (s *MemoryStore) ListBuckets(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.objects[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) DescribeTrainingJob(_ context.Context, name string) (domain.TrainingJobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[name]
	if !ok {
		// what SageMaker answers for an unknown job, after translation
		return domain.TrainingJobRecord{}, &domain.ProviderError{
			Kind:       domain.ErrTrainingJobNotFound,
			Op:         domain.OpDescribeTrainingJob,
			StatusCode: 400,
			Code:       "ValidationException",
			Message:    MissingTrainingJobMessage,
		}
	}
	return job, nil
}

// MissingTrainingJobMessage is the translated SageMaker text for an unknown job.
const MissingTrainingJobMessage = "An error occurred (ValidationException) when calling the DescribeTrainingJob operation: Requested resource not found."

// StaticBroker hands out a fixed credential.
type StaticBroker struct {
	Credential domain.DelegatedCredential
	Err        error
}

func (b StaticBroker) AssumeRole(context.Context, domain.RoleReference, string) (domain.DelegatedCredential, error) {
	return b.Credential, b.Err
}

// StaticSourceFactory always returns Source.
type StaticSourceFactory struct {
	Source output.SourceAccount
}

func (f StaticSourceFactory) ForCredential(context.Context, domain.DelegatedCredential, string) (output.SourceAccount, error) {
	return f.Source, nil
}
