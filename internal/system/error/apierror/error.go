package apierror

import "github.com/wso2/consent-intake-api/internal/system/error/serviceerror"

// ErrorResponse is the wire format for failed requests. Errors is either a
// field-name to message map (validation failures) or a single string
// (structural failures).
type ErrorResponse struct {
	Status        string      `json:"status"`
	Message       string      `json:"message,omitempty"`
	Errors        interface{} `json:"errors,omitempty"`
	UncleanedKeys []string    `json:"uncleanedKeys,omitempty"`
}

// FromServiceError converts a ServiceError into its wire representation.
func FromServiceError(err *serviceerror.ServiceError) ErrorResponse {
	resp := ErrorResponse{
		Status:        "failure",
		Message:       err.ErrorDescription,
		UncleanedKeys: err.UncleanedKeys,
	}
	switch {
	case len(err.FieldErrors) > 0:
		resp.Errors = err.FieldErrors
		resp.Message = ""
	case err.Code == serviceerror.StructuralError.Code:
		resp.Errors = err.ErrorDescription
		resp.Message = ""
	}
	return resp
}
