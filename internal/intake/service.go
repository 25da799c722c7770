// Package intake implements the consent submission pipeline: field
// validation, document upload with watermarking, fingerprinting and the
// versioned two-row record write, with compensation on failure.
package intake

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake/fingerprint"
	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/intake/validator"
	"github.com/wso2/consent-intake-api/internal/storage/blobstore"
	"github.com/wso2/consent-intake-api/internal/storage/documentstore"
	"github.com/wso2/consent-intake-api/internal/system/constants"
	"github.com/wso2/consent-intake-api/internal/system/error/serviceerror"
	"github.com/wso2/consent-intake-api/internal/system/utils"
	"github.com/wso2/consent-intake-api/internal/watermark"
)

// IngestionServiceInterface defines the submission pipeline operations.
type IngestionServiceInterface interface {
	ValidateSubmission(req *model.SubmissionRequest) (*model.ValidationResponse, *serviceerror.ServiceError)
	UploadDocument(ctx context.Context, req *model.SubmissionRequest) (*model.DocumentUploadResponse, *serviceerror.ServiceError)
	IngestSubmission(ctx context.Context, req *model.SubmissionRequest) (*model.IngestResponse, *serviceerror.ServiceError)
}

// IngestionService is the default IngestionServiceInterface implementation.
type IngestionService struct {
	fingerprinter *fingerprint.Fingerprinter
	records       documentstore.Store
	blobs         blobstore.Store
	watermarker   watermark.Applier
	compensator   *CompensationCoordinator
	logger        *logrus.Logger

	// injectable for tests
	now   func() time.Time
	newID func() string
}

// IngestionServiceOptionFunc configures an IngestionService.
type IngestionServiceOptionFunc func(*IngestionService)

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) IngestionServiceOptionFunc {
	return func(s *IngestionService) {
		s.now = now
	}
}

// WithIDGenerator overrides the record id source (used by tests).
func WithIDGenerator(newID func() string) IngestionServiceOptionFunc {
	return func(s *IngestionService) {
		s.newID = newID
	}
}

// NewIngestionService creates a new ingestion service instance.
func NewIngestionService(
	records documentstore.Store,
	blobs blobstore.Store,
	watermarker watermark.Applier,
	logger *logrus.Logger,
	opts ...IngestionServiceOptionFunc,
) *IngestionService {
	svc := &IngestionService{
		fingerprinter: fingerprint.New(),
		records:       records,
		blobs:         blobs,
		watermarker:   watermarker,
		compensator:   NewCompensationCoordinator(blobs, logger),
		logger:        logger,
		now:           time.Now,
		newID:         utils.GenerateUUID,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ValidateSubmission runs the structural and field checks against a
// submission without persisting anything.
func (s *IngestionService) ValidateSubmission(req *model.SubmissionRequest) (*model.ValidationResponse, *serviceerror.ServiceError) {
	if svcErr := s.checkSubmission(req); svcErr != nil {
		return nil, svcErr
	}

	return &model.ValidationResponse{
		Status:    constants.StatusSuccess,
		Message:   "Consent form validated successfully.",
		TimeStamp: s.now().UTC(),
	}, nil
}

// UploadDocument validates the submission, stores the scanned original,
// obtains a watermarked copy from the watermarking service and stores that
// too. If any step after the first write fails, the already-written objects
// are deleted before the error is returned.
func (s *IngestionService) UploadDocument(ctx context.Context, req *model.SubmissionRequest) (*model.DocumentUploadResponse, *serviceerror.ServiceError) {
	if svcErr := s.checkSubmission(req); svcErr != nil {
		return nil, svcErr
	}

	document, ok := validator.DecodePDF(req.ScannedForm.Base64Data)
	if !ok {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"Scanned form is not a valid PDF document")
	}

	uploadID := s.newID()
	originalKey := fmt.Sprintf("%s_%s", uploadID, req.ScannedForm.FileName)
	watermarkedKey := fmt.Sprintf("%s_watermarked_%s", uploadID, req.ScannedForm.FileName)

	originalChecksum, err := s.blobs.Put(ctx, originalKey, document, constants.ContentTypePDF)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store scanned document")
		return nil, serviceerror.CustomServiceError(serviceerror.WatermarkError,
			"Failed to store the scanned document")
	}

	result, err := s.watermarker.Apply(ctx, &watermark.Request{
		DocumentBase64:   base64.StdEncoding.EncodeToString(document),
		FileName:         req.ScannedForm.FileName,
		Admin:            *req.Admin,
		OriginalChecksum: originalChecksum,
	})
	if err != nil {
		s.logger.WithError(err).Error("Watermarking failed")
		return nil, s.failUpload(ctx, serviceerror.CustomServiceError(serviceerror.WatermarkError,
			"Failed to watermark the scanned document"), originalKey)
	}

	watermarked, err := result.DocumentBytes()
	if err != nil {
		s.logger.WithError(err).Error("Watermarked document payload is not valid base64")
		return nil, s.failUpload(ctx, serviceerror.CustomServiceError(serviceerror.WatermarkError,
			"Watermarking service returned an unreadable document"), originalKey)
	}

	watermarkedChecksum, err := s.blobs.Put(ctx, watermarkedKey, watermarked, constants.ContentTypePDF)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store watermarked document")
		return nil, s.failUpload(ctx, serviceerror.CustomServiceError(serviceerror.WatermarkError,
			"Failed to store the watermarked document"), originalKey)
	}

	s.logger.WithFields(logrus.Fields{
		"originalKey":    originalKey,
		"watermarkedKey": watermarkedKey,
	}).Info("Stored scanned and watermarked documents")

	return &model.DocumentUploadResponse{
		Status:                 constants.StatusSuccess,
		Message:                "Documents stored successfully.",
		OriginalS3ObjectKey:    originalKey,
		OriginalS3Hash:         originalChecksum,
		WatermarkedS3ObjectKey: watermarkedKey,
		WatermarkedS3Hash:      watermarkedChecksum,
	}, nil
}

// IngestSubmission fingerprints the validated form, mints a record id and
// writes the pointer row and the first snapshot row in one batch. A failed or
// partial batch write triggers compensation of any blob artifacts the
// submission references.
func (s *IngestionService) IngestSubmission(ctx context.Context, req *model.SubmissionRequest) (*model.IngestResponse, *serviceerror.ServiceError) {
	if svcErr := s.checkSubmission(req); svcErr != nil {
		return nil, svcErr
	}

	fp, err := s.fingerprinter.Fingerprint(req.FormData)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fingerprint form content")
		return nil, &serviceerror.InternalServerError
	}

	recordID := s.newID()
	timestamp := req.TimeStamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}
	timestamp = timestamp.UTC()
	artifacts := req.ArtifactRefs()

	rows := assembleRecordRows(recordID, fp, req.FormData, *req.Admin, timestamp, artifacts)

	if err := s.records.PutRecordBatch(ctx, rows); err != nil {
		s.logger.WithError(err).WithField("recordId", recordID).Error("Record batch write failed")

		svcErr := serviceerror.CustomServiceError(serviceerror.StorageWriteError,
			"Failed to write the consent record")
		if failed := s.compensator.Cleanup(ctx, artifacts.Keys()); len(failed) > 0 {
			svcErr = svcErr.WithUncleanedKeys(failed)
		}
		return nil, svcErr
	}

	s.logger.WithFields(logrus.Fields{
		"recordId": recordID,
		"versions": []int{model.PointerVersion, model.FirstSnapshotVersion},
	}).Info("Consent record stored")

	return &model.IngestResponse{
		Status:    constants.StatusSuccess,
		Message:   "Consent record stored successfully.",
		RecordID:  recordID,
		Versions:  []int{model.PointerVersion, model.FirstSnapshotVersion},
		TimeStamp: timestamp,
	}, nil
}

// checkSubmission runs structural and field validation, mapping the outcome
// onto the service error taxonomy.
func (s *IngestionService) checkSubmission(req *model.SubmissionRequest) *serviceerror.ServiceError {
	if req == nil || !validator.IsStructurallyValid(req.FormData, req.ScannedForm, req.Admin) {
		return &serviceerror.StructuralError
	}
	if fieldErrors := validator.ValidateSubmission(req.FormData, req.ScannedForm, req.Admin, s.now()); fieldErrors != nil {
		return serviceerror.FieldValidationError(fieldErrors)
	}
	return nil
}

// failUpload cleans up the already-written original document and attaches any
// uncleaned keys to the error.
func (s *IngestionService) failUpload(ctx context.Context, svcErr *serviceerror.ServiceError, keys ...string) *serviceerror.ServiceError {
	if failed := s.compensator.Cleanup(ctx, keys); len(failed) > 0 {
		return svcErr.WithUncleanedKeys(failed)
	}
	return svcErr
}
