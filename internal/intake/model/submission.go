package model

import "time"

// ScannedForm is the base64-encoded scanned consent document supplied on
// first-time upload.
type ScannedForm struct {
	Base64Data string `json:"base64Data"`
	FileName   string `json:"fileName"`
}

// SubmissionRequest is the intake API request body. FormData, ScannedForm and
// Admin are the three required top-level sections; the S3 fields are present
// only on the record-write step, carrying the output of a prior document
// upload.
type SubmissionRequest struct {
	FormData    FormContent  `json:"formData"`
	ScannedForm *ScannedForm `json:"scannedForm"`
	Admin       *Submitter   `json:"admin"`
	TimeStamp   time.Time    `json:"timeStamp"`

	OriginalS3ObjectKey    string `json:"originalS3ObjectKey,omitempty"`
	OriginalS3Hash         string `json:"originalS3Hash,omitempty"`
	WatermarkedS3ObjectKey string `json:"watermarkedS3ObjectKey,omitempty"`
	WatermarkedS3Hash      string `json:"watermarkedS3Hash,omitempty"`
}

// ArtifactRefs assembles the optional blob references carried by this
// request. Returns nil when no artifact was uploaded beforehand.
func (r *SubmissionRequest) ArtifactRefs() *ArtifactRefs {
	refs := &ArtifactRefs{}
	if r.OriginalS3ObjectKey != "" {
		refs.Original = &ArtifactRef{Checksum: r.OriginalS3Hash, ObjectKey: r.OriginalS3ObjectKey}
	}
	if r.WatermarkedS3ObjectKey != "" {
		refs.Watermarked = &ArtifactRef{Checksum: r.WatermarkedS3Hash, ObjectKey: r.WatermarkedS3ObjectKey}
	}
	if refs.Original == nil && refs.Watermarked == nil {
		return nil
	}
	return refs
}

// ValidationResponse reports a successful validation pass.
type ValidationResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	TimeStamp time.Time `json:"timeStamp"`
}

// DocumentUploadResponse reports the keys and checksums of the original and
// watermarked copies written by the document upload step.
type DocumentUploadResponse struct {
	Status                 string `json:"status"`
	Message                string `json:"message"`
	OriginalS3ObjectKey    string `json:"originalS3ObjectKey"`
	OriginalS3Hash         string `json:"originalS3Hash"`
	WatermarkedS3ObjectKey string `json:"watermarkedS3ObjectKey"`
	WatermarkedS3Hash      string `json:"watermarkedS3Hash"`
}

// IngestResponse reports the identifier and row versions written for a
// successful submission.
type IngestResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	RecordID  string    `json:"recordId"`
	Versions  []int     `json:"versions"`
	TimeStamp time.Time `json:"timeStamp"`
}
