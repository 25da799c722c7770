package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is the typed failure result returned by services. FieldErrors
// carries per-field validation messages, UncleanedKeys carries blob object
// keys that compensation could not remove.
type ServiceError struct {
	Code             string            `json:"code"`
	Type             ServiceErrorType  `json:"type"`
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	FieldErrors      map[string]string `json:"field_errors,omitempty"`
	UncleanedKeys    []string          `json:"uncleaned_keys,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	StorageWriteError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5001",
		Error:            "storage_write_error",
		ErrorDescription: "Failed to write the consent record",
	}

	CompensationError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5002",
		Error:            "compensation_error",
		ErrorDescription: "Failed to clean up stored artifacts; manual removal required",
	}

	ConfigurationError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5003",
		Error:            "configuration_error",
		ErrorDescription: "Required storage configuration is missing",
	}

	WatermarkError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5004",
		Error:            "watermark_error",
		ErrorDescription: "Document upload failed",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	StructuralError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4002",
		Error:            "malformed_request",
		ErrorDescription: "Malformed JSON object",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// FieldValidationError builds a validation error carrying per-field messages.
func FieldValidationError(fieldErrors map[string]string) *ServiceError {
	return &ServiceError{
		Type:             ValidationError.Type,
		Code:             ValidationError.Code,
		Error:            ValidationError.Error,
		ErrorDescription: ValidationError.ErrorDescription,
		FieldErrors:      fieldErrors,
	}
}

// WithUncleanedKeys appends compensation failure details to an existing
// error. The original error code and description are preserved; the
// compensation outcome is additive, never a replacement.
func (e *ServiceError) WithUncleanedKeys(keys []string) *ServiceError {
	e.UncleanedKeys = keys
	return e
}
