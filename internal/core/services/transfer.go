package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// TransferExecutor copies a model bundle into the destination store or
// removes it from there.
//
// The existence check and the write are not atomic. Two concurrent requests
// for the same model can both observe "absent" and both upload; the store's
// last-writer-wins semantics decide the result.
type TransferExecutor struct {
	stagingDir string
}

// NewTransferExecutor stages downloads under stagingDir, or the system temp
// directory when empty.
func NewTransferExecutor(stagingDir string) *TransferExecutor {
	return &TransferExecutor{stagingDir: stagingDir}
}

func (e *TransferExecutor) Execute(
	ctx context.Context,
	source output.ObjectReader,
	dest output.DestinationStore,
	desc domain.ModelDescriptor,
	action domain.Action,
) (domain.TransferOutcome, error) {
	key := desc.DestinationKey()
	logger := log.WithFields(log.Fields{
		"action": action,
		"model":  desc.LogicalName,
		"key":    key,
	})

	present, err := Exists(ctx, dest, dest.Bucket(), key)
	if err != nil {
		return domain.TransferOutcome{}, err
	}

	switch action {
	case domain.ActionUpload:
		if present {
			logger.Info("destination key already exists")
			return domain.TransferOutcome{State: domain.StateAlreadyPresent, DestinationKey: key}, nil
		}
		if err := e.copyIn(ctx, logger, source, dest, desc.Artifact, key); err != nil {
			return domain.TransferOutcome{}, err
		}
		return domain.TransferOutcome{State: domain.StateComplete, DestinationKey: key}, nil

	case domain.ActionDelete:
		if !present {
			logger.Info("destination key absent, nothing to delete")
			return domain.TransferOutcome{State: domain.StateAlreadyAbsent, DestinationKey: key}, nil
		}
		logger.Info("deleting destination key")
		if err := dest.DeleteObject(ctx, dest.Bucket(), key); err != nil {
			return domain.TransferOutcome{}, err
		}
		return domain.TransferOutcome{State: domain.StateDeleted, DestinationKey: key}, nil
	}

	return domain.TransferOutcome{}, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
}

// copyIn downloads src into a private staging directory and uploads it under
// key. The staging directory is removed before copyIn returns, on every path.
func (e *TransferExecutor) copyIn(
	ctx context.Context,
	logger *log.Entry,
	source output.ObjectReader,
	dest output.DestinationStore,
	src domain.ArtifactLocation,
	key string,
) (err error) {
	staging, err := os.MkdirTemp(e.stagingDir, "model-mirror-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			logger.WithError(rmErr).Error("remove staging dir failed")
			if err == nil {
				err = fmt.Errorf("remove staging dir: %w", rmErr)
			}
			return
		}
		logger.WithField("path", staging).Debug("staging dir removed")
	}()

	f, err := os.Create(filepath.Join(staging, key))
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer f.Close()

	logger.WithField("source", src.URI()).Info("downloading model")
	n, err := source.Download(ctx, src, f)
	if err != nil {
		return err
	}
	logger.WithField("bytes", n).Info("download complete")

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind staging file: %w", err)
	}

	logger.WithField("destination", "s3://"+dest.Bucket()+"/"+key).Info("uploading model")
	if err := dest.Upload(ctx, dest.Bucket(), key, f); err != nil {
		return err
	}
	logger.Info("upload complete")
	return nil
}
