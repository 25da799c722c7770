package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/consent-intake-api/internal/system/error/apierror"
	"github.com/wso2/consent-intake-api/internal/system/error/serviceerror"
)

// SendError writes a ServiceError as an HTTP response with the appropriate
// status code.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	statusCode := http.StatusInternalServerError
	if err.Type == serviceerror.ClientErrorType {
		statusCode = http.StatusBadRequest
	}
	// Validation and structural failures are part of the submission protocol
	// and are reported with a 200 body carrying status:"failure", matching
	// the intake API contract.
	if err.Code == serviceerror.ValidationError.Code || err.Code == serviceerror.StructuralError.Code {
		statusCode = http.StatusOK
	}

	c.JSON(statusCode, apierror.FromServiceError(err))
}
