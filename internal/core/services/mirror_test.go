package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"model-mirror-service/internal/core/domain"
	"model-mirror-service/internal/testutil"
)

const testSourceBucket = "aws-deepracer-abc"

// seedJob stores a finished training job and its bundle in source.
func seedJob(source *testutil.MemoryStore, job, model string) {
	key := "DeepRacer-SageMaker-rlmdl-123456789012-" + job + "/" + job + "/output/model.tar.gz"
	source.Put(testSourceBucket, key, []byte("bundle-"+job))
	source.AddTrainingJob(domain.TrainingJobRecord{
		Name: job,
		HyperParameters: map[string]string{
			DefaultNameHyperParameter: `"s3://` + testSourceBucket + `/custom_files/` + model + `/reward_function.py"`,
		},
		ModelArtifacts: "s3://" + testSourceBucket + "/" + key,
	})
}

func newTestMirror(t *testing.T, broker testutil.StaticBroker, source, dest *testutil.MemoryStore) *MirrorService {
	t.Helper()
	return NewMirrorService(
		broker,
		testutil.StaticSourceFactory{Source: source},
		dest,
		NewCatalogScanner(ScanConfig{}),
		NewModelInfoResolver(""),
		NewTransferExecutor(t.TempDir()),
		MirrorOptions{},
	)
}

func TestMirrorService_ListModels(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	seedJob(source, "20230101000000", "racer1")
	seedJob(source, "20230601000000", "racer1")
	seedJob(source, "20230301000000", "lap-time-v2")
	source.Put("other-bucket", "DeepRacer-SageMaker-rlmdl-x/job/output/model.tar.gz", []byte("ignored"))
	dest.Put("central", "racer1-123456789012-us-east-1.tar.gz", []byte("mirrored"))

	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)
	models, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.NoError(t, err)

	require.Len(t, models, 2)
	assert.Equal(t, "lap-time-v2", models[0].LogicalName)
	assert.False(t, models[0].Uploaded)
	assert.Equal(t, "racer1", models[1].LogicalName)
	assert.Equal(t, "20230601000000", models[1].JobIdentifier)
	assert.True(t, models[1].Uploaded)
	assert.Equal(t, "123456789012", models[1].SourceAccountID)
}

func TestMirrorService_ListModelsSkipsBadMetadata(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	seedJob(source, "20230101000000", "racer1")
	source.Put(testSourceBucket, "DeepRacer-SageMaker-rlmdl-1/job-bad/output/model.tar.gz", []byte("x"))
	source.AddTrainingJob(domain.TrainingJobRecord{Name: "job-bad", HyperParameters: map[string]string{}})

	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)
	models, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.NoError(t, err)

	require.Len(t, models, 1)
	assert.Equal(t, "racer1", models[0].LogicalName)
}

func TestMirrorService_ListModelsAbortsOnMissingJob(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	source.Put(testSourceBucket, "DeepRacer-SageMaker-rlmdl-1/job-gone/output/model.tar.gz", []byte("x"))

	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)
	_, err := svc.ListModels(context.Background(), testRole, "us-east-1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 400, domain.StatusCode(err))
	assert.Equal(t, testutil.MissingTrainingJobMessage, err.Error())
}

func TestMirrorService_ListModelsEmptyAccount(t *testing.T) {
	svc := newTestMirror(t, testutil.StaticBroker{}, testutil.NewMemoryStore(""), testutil.NewMemoryStore("central"))
	models, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestMirrorService_AssumeRoleFailureIsSanitized(t *testing.T) {
	broker := testutil.StaticBroker{Err: &domain.ProviderError{
		Kind:       domain.ErrAuthorization,
		Op:         domain.OpAssumeRole,
		StatusCode: 403,
		Code:       "AccessDenied",
		Message:    "An error occurred (AccessDenied) when calling the AssumeRole operation: User: arn:aws:sts::999999999999:assumed-role/engine/api is not authorized to perform: sts:AssumeRole on resource: arn:aws:iam::123456789012:role/DeepRacerModelAccess",
	}}
	svc := newTestMirror(t, broker, testutil.NewMemoryStore(""), testutil.NewMemoryStore("central"))

	_, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	assert.NotContains(t, err.Error(), "999999999999")
	assert.Contains(t, err.Error(), "User is not authorized")
	assert.Equal(t, 403, domain.StatusCode(err))

	_, err = svc.Transfer(context.Background(), domain.TransferRequest{
		JobIdentifier: "20230101000000",
		Region:        "us-east-1",
		Role:          testRole,
		Action:        domain.ActionUpload,
	})
	assert.NotContains(t, err.Error(), "999999999999")
}

func TestMirrorService_DelegatedFailureEchoesRole(t *testing.T) {
	denied := &domain.ProviderError{
		Kind:       domain.ErrAuthorization,
		Op:         domain.OpListBuckets,
		StatusCode: 403,
		Message:    "An error occurred (AccessDenied) when calling the ListBuckets operation: User: arn:aws:sts::123456789012:assumed-role/DeepRacerModelAccess/s is not authorized",
	}
	source := new(testutil.MockSourceAccount)
	source.On("ListBuckets", mock.Anything).Return(nil, denied)

	svc := NewMirrorService(
		testutil.StaticBroker{},
		testutil.StaticSourceFactory{Source: source},
		testutil.NewMemoryStore("central"),
		NewCatalogScanner(ScanConfig{}),
		NewModelInfoResolver(""),
		NewTransferExecutor(t.TempDir()),
		MirrorOptions{},
	)
	_, err := svc.ListModels(context.Background(), testRole, "us-east-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Role: "+testRole.ARN+" is not authorized")
}

func TestMirrorService_UsesFreshSessionPerCall(t *testing.T) {
	broker := new(testutil.MockCredentialBroker)
	factory := new(testutil.MockSourceAccountFactory)
	cred := domain.DelegatedCredential{AccessKeyID: "AKIA", SecretAccessKey: "s", SessionToken: "t"}
	var sessions []string

	broker.On("AssumeRole", mock.Anything, testRole, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "api-models-") && len(name) <= maxSessionNameLen
	})).Run(func(args mock.Arguments) {
		sessions = append(sessions, args.String(2))
	}).Return(cred, nil)
	factory.On("ForCredential", mock.Anything, cred, "eu-west-1").Return(testutil.NewMemoryStore(""), nil)

	svc := NewMirrorService(broker, factory, testutil.NewMemoryStore("central"),
		NewCatalogScanner(ScanConfig{}), NewModelInfoResolver(""), NewTransferExecutor(t.TempDir()), MirrorOptions{SessionPrefix: "api models"})

	for i := 0; i < 2; i++ {
		_, err := svc.ListModels(context.Background(), testRole, "eu-west-1")
		require.NoError(t, err)
	}

	broker.AssertNumberOfCalls(t, "AssumeRole", 2)
	factory.AssertNumberOfCalls(t, "ForCredential", 2)
	require.Len(t, sessions, 2)
	assert.NotEqual(t, sessions[0], sessions[1])
}

func TestMirrorService_SourceClientFailure(t *testing.T) {
	factory := new(testutil.MockSourceAccountFactory)
	boom := errors.New("endpoint resolution failed")
	factory.On("ForCredential", mock.Anything, mock.Anything, "us-east-1").Return(nil, boom)

	svc := NewMirrorService(testutil.StaticBroker{}, factory, testutil.NewMemoryStore("central"),
		NewCatalogScanner(ScanConfig{}), NewModelInfoResolver(""), NewTransferExecutor(t.TempDir()), MirrorOptions{})

	_, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	assert.ErrorIs(t, err, boom)
}

func TestMirrorService_TransferIsIdempotent(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	seedJob(source, "20230301000000", "lap-time-v2")
	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)

	req := domain.TransferRequest{
		JobIdentifier: "20230301000000",
		Region:        "us-east-1",
		Role:          testRole,
		Action:        domain.ActionUpload,
	}

	outcome, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageUploaded, outcome.Message())

	outcome, err = svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageAlreadyPresent, outcome.Message())

	data, ok := dest.Get("central", "lap-time-v2-123456789012-us-east-1.tar.gz")
	require.True(t, ok)
	assert.Equal(t, []byte("bundle-20230301000000"), data)
	assert.Equal(t, 1, dest.Writes)

	req.Action = domain.ActionDelete
	outcome, err = svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDeleted, outcome.State)

	outcome, err = svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAlreadyAbsent, outcome.State)
	assert.Equal(t, domain.MessageAlreadyAbsent, outcome.Message())
	assert.Equal(t, 1, dest.Deletes)
}

func TestMirrorService_TransferValidation(t *testing.T) {
	svc := newTestMirror(t, testutil.StaticBroker{}, testutil.NewMemoryStore(""), testutil.NewMemoryStore("central"))

	testCases := []struct {
		name    string
		req     domain.TransferRequest
		wantErr error
	}{
		{"missing job", domain.TransferRequest{Region: "us-east-1", Role: testRole, Action: domain.ActionUpload}, domain.ErrMissingJobID},
		{"missing region", domain.TransferRequest{JobIdentifier: "j", Role: testRole, Action: domain.ActionUpload}, domain.ErrMissingRegion},
		{"missing role", domain.TransferRequest{JobIdentifier: "j", Region: "us-east-1", Action: domain.ActionUpload}, domain.ErrInvalidRoleARN},
		{"bad action", domain.TransferRequest{JobIdentifier: "j", Region: "us-east-1", Role: testRole, Action: "Copy"}, domain.ErrInvalidAction},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transfer(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 400, domain.StatusCode(err))
		})
	}
}

func TestMirrorService_TransferUnknownJob(t *testing.T) {
	svc := newTestMirror(t, testutil.StaticBroker{}, testutil.NewMemoryStore(""), testutil.NewMemoryStore("central"))
	_, err := svc.Transfer(context.Background(), domain.TransferRequest{
		JobIdentifier: "missing",
		Region:        "us-east-1",
		Role:          testRole,
		Action:        domain.ActionDelete,
	})
	assert.ErrorIs(t, err, domain.ErrTrainingJobNotFound)
}

func TestMirrorService_TransferChecksDestinationOnce(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	seedJob(source, "20230301000000", "lap-time-v2")
	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)

	_, err := svc.Transfer(context.Background(), domain.TransferRequest{
		JobIdentifier: "20230301000000",
		Region:        "us-east-1",
		Role:          testRole,
		Action:        domain.ActionDelete,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dest.Heads)
}

func TestMirrorService_ListModelsUsesScannedLocation(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	key := "DeepRacer-SageMaker-rlmdl-123456789012-20230601000000/job-a/output/model.tar.gz"
	source.Put(testSourceBucket, key, []byte("x"))
	source.AddTrainingJob(domain.TrainingJobRecord{
		Name: "job-a",
		HyperParameters: map[string]string{
			DefaultNameHyperParameter: "s3://" + testSourceBucket + "/custom_files/racer1/reward_function.py",
		},
	})
	svc := newTestMirror(t, testutil.StaticBroker{}, source, dest)

	models, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, domain.ArtifactLocation{Bucket: testSourceBucket, Key: key}, models[0].Artifact)
	assert.Equal(t, 1, dest.Heads)
}

func TestMirrorService_ListModelsBoundedConcurrency(t *testing.T) {
	source := testutil.NewMemoryStore("")
	dest := testutil.NewMemoryStore("central")
	names := []string{"racer5", "racer3", "racer1", "racer4", "racer2"}
	for i, name := range names {
		seedJob(source, "2023010100000"+string(rune('0'+i)), name)
	}

	svc := NewMirrorService(testutil.StaticBroker{}, testutil.StaticSourceFactory{Source: source}, dest,
		NewCatalogScanner(ScanConfig{}), NewModelInfoResolver(""), NewTransferExecutor(t.TempDir()),
		MirrorOptions{ResolveConcurrency: 2})

	models, err := svc.ListModels(context.Background(), testRole, "us-east-1")
	require.NoError(t, err)

	require.Len(t, models, len(names))
	for i, m := range models {
		assert.Equal(t, "racer"+string(rune('1'+i)), m.LogicalName)
	}
}
