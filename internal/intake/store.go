package intake

import (
	"time"

	"github.com/wso2/consent-intake-api/internal/intake/model"
)

// assembleRecordRows builds the two-row batch for a new submission: the
// pointer row naming the first snapshot as latest, and the snapshot row
// itself. Both rows carry identical content; only the version fields differ.
func assembleRecordRows(id string, fp model.Fingerprint, form model.FormContent, submitter model.Submitter, ts time.Time, artifacts *model.ArtifactRefs) []model.ConsentRecord {
	return []model.ConsentRecord{
		model.NewPointerRow(id, model.FirstSnapshotVersion, fp, form, submitter, ts, artifacts),
		model.NewSnapshotRow(id, model.FirstSnapshotVersion, fp, form, submitter, ts, artifacts),
	}
}
