// Package documentstore persists versioned consent records keyed by
// id+version.
package documentstore

import (
	"context"
	"errors"

	"github.com/wso2/consent-intake-api/internal/intake/model"
)

// ErrPartialWrite reports that a batch write was applied for some rows but
// not others. Callers must treat this as a failed submission: a pointer row
// must never be observable without its snapshot row, or vice versa.
var ErrPartialWrite = errors.New("document store batch write partially applied")

// Store writes consent record batches. Implementations either apply the
// whole batch or expose enough information for the caller to detect partial
// application.
type Store interface {
	PutRecordBatch(ctx context.Context, records []model.ConsentRecord) error
}
