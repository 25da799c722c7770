package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/system/error/serviceerror"
	"github.com/wso2/consent-intake-api/internal/system/middleware"
	"github.com/wso2/consent-intake-api/internal/system/utils"
)

// SubmissionHandler exposes the submission pipeline over HTTP.
type SubmissionHandler struct {
	service IngestionServiceInterface
	logger  *logrus.Logger
}

// NewSubmissionHandler creates a new submission handler instance.
func NewSubmissionHandler(service IngestionServiceInterface, logger *logrus.Logger) *SubmissionHandler {
	return &SubmissionHandler{service: service, logger: logger}
}

// HandleValidate handles POST /consent-submissions/validate.
func (h *SubmissionHandler) HandleValidate(c *gin.Context) {
	req, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	response, svcErr := h.service.ValidateSubmission(req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// HandleDocumentUpload handles POST /consent-submissions/documents.
func (h *SubmissionHandler) HandleDocumentUpload(c *gin.Context) {
	req, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	response, svcErr := h.service.UploadDocument(c, req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// HandleIngest handles POST /consent-submissions.
func (h *SubmissionHandler) HandleIngest(c *gin.Context) {
	req, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	response, svcErr := h.service.IngestSubmission(c, req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// bindSubmission parses the request body. An unparseable body is a structural
// failure reported through the submission protocol, not a transport error.
func (h *SubmissionHandler) bindSubmission(c *gin.Context) (*model.SubmissionRequest, bool) {
	var req model.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).WithField("correlationId", middleware.GetCorrelationID(c)).
			Debug("Failed to parse submission request body")
		utils.SendError(c, &serviceerror.StructuralError)
		return nil, false
	}
	return &req, true
}
