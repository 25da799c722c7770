package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	ContentTypeJSON         = "application/json"
	ContentTypePDF          = "application/pdf"

	APIBasePath = "/api/v1"

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
	HeaderCorrelation = CorrelationIDHeaderName
)

// Submission result statuses used in API responses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
