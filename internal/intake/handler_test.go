package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/system/error/serviceerror"
)

type stubService struct {
	validateResp *model.ValidationResponse
	uploadResp   *model.DocumentUploadResponse
	ingestResp   *model.IngestResponse
	err          *serviceerror.ServiceError
	lastRequest  *model.SubmissionRequest
}

func (s *stubService) ValidateSubmission(req *model.SubmissionRequest) (*model.ValidationResponse, *serviceerror.ServiceError) {
	s.lastRequest = req
	return s.validateResp, s.err
}

func (s *stubService) UploadDocument(_ context.Context, req *model.SubmissionRequest) (*model.DocumentUploadResponse, *serviceerror.ServiceError) {
	s.lastRequest = req
	return s.uploadResp, s.err
}

func (s *stubService) IngestSubmission(_ context.Context, req *model.SubmissionRequest) (*model.IngestResponse, *serviceerror.ServiceError) {
	s.lastRequest = req
	return s.ingestResp, s.err
}

func newHandlerRouter(service *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(service, testLogger())
	engine := gin.New()
	engine.POST("/consent-submissions", handler.HandleIngest)
	engine.POST("/consent-submissions/validate", handler.HandleValidate)
	engine.POST("/consent-submissions/documents", handler.HandleDocumentUpload)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleIngestSuccess(t *testing.T) {
	service := &stubService{ingestResp: &model.IngestResponse{
		Status:   "success",
		RecordID: "rec-1",
		Versions: []int{0, 1},
	}}
	engine := newHandlerRouter(service)

	recorder := postJSON(t, engine, "/consent-submissions", validRequest())
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp model.IngestResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp.RecordID)
	assert.Equal(t, []int{0, 1}, resp.Versions)
	require.NotNil(t, service.lastRequest)
	assert.Equal(t, "Alice", service.lastRequest.FormData["firstName"])
}

func TestHandleValidateFieldErrors(t *testing.T) {
	service := &stubService{err: serviceerror.FieldValidationError(map[string]string{
		"postcode": "Invalid Postcode",
	})}
	engine := newHandlerRouter(service)

	recorder := postJSON(t, engine, "/consent-submissions/validate", validRequest())
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp["status"])
	errors, ok := resp["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Invalid Postcode", errors["postcode"])
}

func TestHandleIngestMalformedBody(t *testing.T) {
	service := &stubService{}
	engine := newHandlerRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/consent-submissions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp["status"])
	assert.Equal(t, "Malformed JSON object", resp["errors"])
	assert.Nil(t, service.lastRequest)
}

func TestHandleIngestServerError(t *testing.T) {
	service := &stubService{err: serviceerror.CustomServiceError(serviceerror.StorageWriteError,
		"Failed to write the consent record").WithUncleanedKeys([]string{"orig.pdf"})}
	engine := newHandlerRouter(service)

	recorder := postJSON(t, engine, "/consent-submissions", validRequest())
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp["status"])
	uncleaned, ok := resp["uncleanedKeys"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"orig.pdf"}, uncleaned)
}

func TestHandleDocumentUploadSuccess(t *testing.T) {
	service := &stubService{uploadResp: &model.DocumentUploadResponse{
		Status:                 "success",
		OriginalS3ObjectKey:    "id-1_consent.pdf",
		OriginalS3Hash:         "orig-hash",
		WatermarkedS3ObjectKey: "id-1_watermarked_consent.pdf",
		WatermarkedS3Hash:      "wm-hash",
	}}
	engine := newHandlerRouter(service)

	recorder := postJSON(t, engine, "/consent-submissions/documents", validRequest())
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp model.DocumentUploadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "id-1_consent.pdf", resp.OriginalS3ObjectKey)
	assert.Equal(t, "wm-hash", resp.WatermarkedS3Hash)
}
