package testutil

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// MockCredentialBroker is a mock of CredentialBroker.
type MockCredentialBroker struct {
	mock.Mock
}

func (m *MockCredentialBroker) AssumeRole(ctx context.Context, role domain.RoleReference, sessionName string) (domain.DelegatedCredential, error) {
	args := m.Called(ctx, role, sessionName)
	return args.Get(0).(domain.DelegatedCredential), args.Error(1)
}

// MockSourceAccountFactory is a mock of SourceAccountFactory.
type MockSourceAccountFactory struct {
	mock.Mock
}

func (m *MockSourceAccountFactory) ForCredential(ctx context.Context, cred domain.DelegatedCredential, region string) (output.SourceAccount, error) {
	args := m.Called(ctx, cred, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(output.SourceAccount), args.Error(1)
}

// MockSourceAccount is a mock of SourceAccount.
type MockSourceAccount struct {
	mock.Mock
}

func (m *MockSourceAccount) ListBuckets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSourceAccount) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSourceAccount) DescribeTrainingJob(ctx context.Context, name string) (domain.TrainingJobRecord, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.TrainingJobRecord), args.Error(1)
}

func (m *MockSourceAccount) Download(ctx context.Context, loc domain.ArtifactLocation, w io.WriterAt) (int64, error) {
	args := m.Called(ctx, loc, w)
	return args.Get(0).(int64), args.Error(1)
}

// MockDestinationStore is a mock of DestinationStore.
type MockDestinationStore struct {
	mock.Mock
	BucketName string
}

func (m *MockDestinationStore) Bucket() string {
	return m.BucketName
}

func (m *MockDestinationStore) HeadObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockDestinationStore) Download(ctx context.Context, loc domain.ArtifactLocation, w io.WriterAt) (int64, error) {
	args := m.Called(ctx, loc, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDestinationStore) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	args := m.Called(ctx, bucket, key, body)
	return args.Error(0)
}

func (m *MockDestinationStore) DeleteObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

// MockMessageQueue is a mock of MessageQueue.
type MockMessageQueue struct {
	mock.Mock
}

func (m *MockMessageQueue) Receive(ctx context.Context, maxMessages int32, wait time.Duration) ([]output.QueueMessage, error) {
	args := m.Called(ctx, maxMessages, wait)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]output.QueueMessage), args.Error(1)
}

func (m *MockMessageQueue) Ack(ctx context.Context, receiptHandle string) error {
	args := m.Called(ctx, receiptHandle)
	return args.Error(0)
}

// MockLocalStore is a mock of LocalStore. Put invokes fill against Buffer
// before returning the configured error.
type MockLocalStore struct {
	mock.Mock
	Buffer *WriterAtBuffer
}

func (m *MockLocalStore) Put(ctx context.Context, key string, fill func(w io.WriterAt) error) error {
	args := m.Called(ctx, key)
	if m.Buffer == nil {
		m.Buffer = &WriterAtBuffer{}
	}
	if err := fill(m.Buffer); err != nil {
		return err
	}
	return args.Error(0)
}

func (m *MockLocalStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
