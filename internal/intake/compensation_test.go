package intake

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCleanupDeletesExactlyTheGivenKeys(t *testing.T) {
	blobs := &fakeBlobStore{}
	coordinator := NewCompensationCoordinator(blobs, testLogger())

	failed := coordinator.Cleanup(context.Background(), []string{"a.pdf", "b.pdf"})
	assert.Nil(t, failed)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, blobs.deleted)
}

func TestCleanupSkipsEmptyKeys(t *testing.T) {
	blobs := &fakeBlobStore{}
	coordinator := NewCompensationCoordinator(blobs, testLogger())

	failed := coordinator.Cleanup(context.Background(), []string{"", "a.pdf", ""})
	assert.Nil(t, failed)
	assert.Equal(t, []string{"a.pdf"}, blobs.deleted)
}

func TestCleanupNoKeysIsNoOp(t *testing.T) {
	blobs := &fakeBlobStore{}
	coordinator := NewCompensationCoordinator(blobs, testLogger())

	assert.Nil(t, coordinator.Cleanup(context.Background(), nil))
	assert.Empty(t, blobs.deleted)
}

func TestCleanupContinuesPastFailures(t *testing.T) {
	blobs := &fakeBlobStore{deleteErrs: map[string]error{"a.pdf": errors.New("access denied")}}
	coordinator := NewCompensationCoordinator(blobs, testLogger())

	failed := coordinator.Cleanup(context.Background(), []string{"a.pdf", "b.pdf"})
	assert.Equal(t, []string{"a.pdf"}, failed)
	assert.Contains(t, blobs.deleted, "b.pdf")
}
