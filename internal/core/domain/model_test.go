package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleARN(t *testing.T) {
	testCases := []struct {
		name    string
		arn     string
		account string
		path    string
		wantErr bool
	}{
		{"simple", "arn:aws:iam::123456789012:role/DeepRacerModelAccess", "123456789012", "DeepRacerModelAccess", false},
		{"with path", "arn:aws:iam::123456789012:role/service/racing/Access", "123456789012", "service/racing/Access", false},
		{"surrounding space", "  arn:aws:iam::123456789012:role/R ", "123456789012", "R", false},
		{"short account", "arn:aws:iam::12345:role/R", "", "", true},
		{"user not role", "arn:aws:iam::123456789012:user/bob", "", "", true},
		{"no role name", "arn:aws:iam::123456789012:role/", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := ParseRoleARN(tc.arn)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRoleARN)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.account, role.AccountID)
			assert.Equal(t, tc.path, role.Path)
		})
	}
}

func TestDestinationKey(t *testing.T) {
	assert.Equal(t, "racer1-123456789012-us-east-1.tar.gz", DestinationKey("racer1", "123456789012", "us-east-1"))

	d := ModelDescriptor{LogicalName: "lap-time-v2", SourceAccountID: "123456789012", Region: "eu-west-1"}
	assert.Equal(t, "lap-time-v2-123456789012-eu-west-1.tar.gz", d.DestinationKey())
}

func TestParseS3URI(t *testing.T) {
	loc, err := ParseS3URI("s3://aws-deepracer-abc/prefix/job/output/model.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, ArtifactLocation{Bucket: "aws-deepracer-abc", Key: "prefix/job/output/model.tar.gz"}, loc)
	assert.Equal(t, "s3://aws-deepracer-abc/prefix/job/output/model.tar.gz", loc.URI())

	for _, bad := range []string{"", "https://x/y", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, err := ParseS3URI(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestArtifactLocation_JobIdentifier(t *testing.T) {
	loc := ArtifactLocation{Bucket: "b", Key: "DeepRacer-SageMaker-rlmdl-123456789012-20230601000000/job-a/output/model.tar.gz"}
	job, err := loc.JobIdentifier()
	require.NoError(t, err)
	assert.Equal(t, "job-a", job)

	_, err = ArtifactLocation{Key: "model.tar.gz"}.JobIdentifier()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDelegatedCredential_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, DelegatedCredential{}.Expired(now))
	assert.False(t, DelegatedCredential{Expiration: now.Add(time.Minute)}.Expired(now))
	assert.True(t, DelegatedCredential{Expiration: now}.Expired(now))
}

func TestTransferRequest_Validate(t *testing.T) {
	role, err := ParseRoleARN("arn:aws:iam::123456789012:role/R")
	require.NoError(t, err)

	ok := TransferRequest{JobIdentifier: "j", Region: "us-east-1", Role: role, Action: ActionDelete}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Action = "upload"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAction)
}

func TestTransferOutcome(t *testing.T) {
	testCases := []struct {
		state   TransferState
		message string
		changed bool
	}{
		{StateAlreadyPresent, "Model already present.", false},
		{StateComplete, "Model uploaded.", true},
		{StateAlreadyAbsent, "Model was not uploaded so nothing to delete.", false},
		{StateDeleted, "Model deleted.", true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.state), func(t *testing.T) {
			o := TransferOutcome{State: tc.state}
			assert.Equal(t, tc.message, o.Message())
			assert.Equal(t, tc.changed, o.Changed())
		})
	}
}

func TestStatusCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"bad arn", fmt.Errorf("%w: x", ErrInvalidRoleARN), 400},
		{"bad action", ErrInvalidAction, 400},
		{"missing job", ErrMissingJobID, 400},
		{"metadata", ErrMissingHyperParameter, 422},
		{"authorization", ErrAuthorization, 403},
		{"not found", ErrTrainingJobNotFound, 404},
		{"provider", ErrProvider, 502},
		{"provider code wins", &ProviderError{Kind: ErrProvider, StatusCode: 503}, 503},
		{"provider without code", &ProviderError{Kind: ErrAuthorization}, 403},
		{"unknown", errors.New("disk full"), 500},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &ProviderError{Kind: ErrTrainingJobNotFound, Message: "Requested resource not found."})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrTrainingJobNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "resolve: Requested resource not found.", err.Error())
}
