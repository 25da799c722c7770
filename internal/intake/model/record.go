package model

import "time"

// PointerVersion is the version number of the mutable pointer row. Snapshot
// rows are numbered 1..N and are immutable once written.
const PointerVersion = 0

// FirstSnapshotVersion is the version assigned to the initial snapshot row of
// a new submission.
const FirstSnapshotVersion = 1

// Fingerprint is the salted content hash persisted with every record row.
// The salt is required to re-verify the hash later; it is stored alongside
// the hash for that reason.
type Fingerprint struct {
	Hash string `json:"formHash" dynamodbav:"formHash" db:"FORM_HASH"`
	Salt string `json:"saltKey" dynamodbav:"saltKey" db:"SALT_KEY"`
}

// FormContent is the validated consent form payload. It is opaque to the
// ingestion pipeline: the validator inspects individual fields, everything
// downstream stores it as-is.
type FormContent map[string]any

// Submitter identifies the administrator who filed the submission.
type Submitter struct {
	ID         string `json:"id" dynamodbav:"id"`
	Name       string `json:"name" dynamodbav:"name"`
	FamilyName string `json:"familyName" dynamodbav:"familyName"`
}

// ArtifactRef points at a blob store object by key, together with the
// checksum the store reported when the object was written.
type ArtifactRef struct {
	Checksum  string `json:"s3Hash" dynamodbav:"s3Hash"`
	ObjectKey string `json:"s3ObjectKey" dynamodbav:"s3ObjectKey"`
}

// ArtifactRefs holds the blob references associated with a submission: the
// scanned original and its watermarked copy.
type ArtifactRefs struct {
	Original    *ArtifactRef `json:"original,omitempty" dynamodbav:"original,omitempty"`
	Watermarked *ArtifactRef `json:"watermarked,omitempty" dynamodbav:"watermarked,omitempty"`
}

// Keys returns the non-empty object keys referenced by this set. These are
// the keys the compensation coordinator targets when a submission is
// abandoned after its artifacts were written.
func (a *ArtifactRefs) Keys() []string {
	if a == nil {
		return nil
	}
	var keys []string
	if a.Original != nil && a.Original.ObjectKey != "" {
		keys = append(keys, a.Original.ObjectKey)
	}
	if a.Watermarked != nil && a.Watermarked.ObjectKey != "" {
		keys = append(keys, a.Watermarked.ObjectKey)
	}
	return keys
}

// ConsentRecord is one stored row of a consent submission. Every submission
// is persisted as two rows sharing an id: the pointer row (version 0) whose
// LatestVersion names the highest snapshot, and one or more snapshot rows
// (version 1..N) that are never modified after their initial write.
type ConsentRecord struct {
	ID            string        `json:"id" dynamodbav:"id"`
	Version       int           `json:"version" dynamodbav:"version"`
	LatestVersion int           `json:"latestVersion,omitempty" dynamodbav:"latestVersion,omitempty"`
	Fingerprint   Fingerprint   `json:"hashMap" dynamodbav:"HashMap"`
	FormContent   FormContent   `json:"consentForm" dynamodbav:"consentForm"`
	Submitter     Submitter     `json:"admin" dynamodbav:"admin"`
	Timestamp     time.Time     `json:"timeStamp" dynamodbav:"timeStamp"`
	Artifacts     *ArtifactRefs `json:"s3Map,omitempty" dynamodbav:"s3Map,omitempty"`
}

// NewPointerRow builds the version-0 row for a submission.
func NewPointerRow(id string, latestVersion int, fp Fingerprint, form FormContent, submitter Submitter, ts time.Time, artifacts *ArtifactRefs) ConsentRecord {
	return ConsentRecord{
		ID:            id,
		Version:       PointerVersion,
		LatestVersion: latestVersion,
		Fingerprint:   fp,
		FormContent:   form,
		Submitter:     submitter,
		Timestamp:     ts,
		Artifacts:     artifacts,
	}
}

// NewSnapshotRow builds an immutable snapshot row for a submission.
func NewSnapshotRow(id string, version int, fp Fingerprint, form FormContent, submitter Submitter, ts time.Time, artifacts *ArtifactRefs) ConsentRecord {
	return ConsentRecord{
		ID:          id,
		Version:     version,
		Fingerprint: fp,
		FormContent: form,
		Submitter:   submitter,
		Timestamp:   ts,
		Artifacts:   artifacts,
	}
}

// IsPointer reports whether this row is the pointer row.
func (r *ConsentRecord) IsPointer() bool {
	return r.Version == PointerVersion
}
