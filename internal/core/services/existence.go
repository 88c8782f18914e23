package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

// Exists probes store for bucket/key with a metadata request. A missing object
// is reported as false; every other failure is returned unchanged.
func Exists(ctx context.Context, store output.ObjectProber, bucket, key string) (bool, error) {
	err := store.HeadObject(ctx, bucket, key)
	switch {
	case err == nil:
		log.WithFields(log.Fields{"bucket": bucket, "key": key}).Debug("object exists")
		return true, nil
	case errors.Is(err, domain.ErrObjectNotFound):
		log.WithFields(log.Fields{"bucket": bucket, "key": key}).Debug("object does not exist")
		return false, nil
	default:
		return false, err
	}
}
