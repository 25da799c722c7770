package intake

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/storage/blobstore"
)

// CompensationCoordinator removes uploaded documents after a failed
// submission so no orphaned blobs accumulate. Deletes are idempotent; a key
// that is already gone counts as cleaned.
type CompensationCoordinator struct {
	blobs  blobstore.Store
	logger *logrus.Logger
}

// NewCompensationCoordinator creates a new compensation coordinator instance.
func NewCompensationCoordinator(blobs blobstore.Store, logger *logrus.Logger) *CompensationCoordinator {
	return &CompensationCoordinator{blobs: blobs, logger: logger}
}

// Cleanup deletes every non-empty key and returns the keys that could not be
// deleted. Empty keys are skipped without an error: a submission without an
// attached document has nothing to clean. A delete failure for one key does
// not stop the attempt on the remaining keys.
func (c *CompensationCoordinator) Cleanup(ctx context.Context, keys []string) []string {
	var failed []string
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := c.blobs.Delete(ctx, key); err != nil {
			c.logger.WithError(err).WithField("objectKey", key).Error("Failed to delete uploaded document during cleanup")
			failed = append(failed, key)
			continue
		}
		c.logger.WithField("objectKey", key).Info("Deleted uploaded document during cleanup")
	}
	return failed
}
