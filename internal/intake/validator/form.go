// Package validator implements field-level validation of consent-form
// submissions. All rules are pure functions of their inputs; the only ambient
// read is the current time for the date-of-birth bounds.
package validator

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/wso2/consent-intake-api/internal/intake/model"
)

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	contactNumberRegex = regexp.MustCompile(`^(02|03|04|07|08)\d{8}$`)
	stateRegex         = regexp.MustCompile(`^(NSW|VIC|QLD|WA|SA|TAS|ACT|NT)$`)
	postcodeRegex      = regexp.MustCompile(`^\d{4}$`)
	nameRegex          = regexp.MustCompile(`^[a-zA-Z]+$`)
	guardianNameRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// pdfSignature is the PDF magic number.
var pdfSignature = []byte{0x25, 0x50, 0x44, 0x46}

const (
	maxNameLength             = 50
	maxHealthConditionsLength = 500
	dateOfBirthLayout         = "02-01-2006"
)

var minDateOfBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// fieldRule binds a form field name to its validation function. Rules are
// evaluated in order and every failure is collected; validation never stops
// at the first bad field.
type fieldRule struct {
	field    string
	validate func(form model.FormContent, now time.Time) string
}

var formRules = []fieldRule{
	{"firstName", func(f model.FormContent, _ time.Time) string {
		return validatePersonName(stringField(f, "firstName"), "First Name")
	}},
	{"lastName", func(f model.FormContent, _ time.Time) string {
		return validatePersonName(stringField(f, "lastName"), "Last Name")
	}},
	{"dateOfBirth", func(f model.FormContent, now time.Time) string {
		return validateDateOfBirth(stringField(f, "dateOfBirth"), now)
	}},
	{"email", func(f model.FormContent, _ time.Time) string {
		return validateRequiredPattern(stringField(f, "email"), emailRegex, "Email Address")
	}},
	{"contactNumber", func(f model.FormContent, _ time.Time) string {
		return validateRequiredPattern(stringField(f, "contactNumber"), contactNumberRegex, "Phone Number")
	}},
	{"streetAddress", func(f model.FormContent, _ time.Time) string {
		return validateRequired(stringField(f, "streetAddress"), "Street Address")
	}},
	{"suburb", func(f model.FormContent, _ time.Time) string {
		return validateRequired(stringField(f, "suburb"), "Suburb")
	}},
	{"state", func(f model.FormContent, _ time.Time) string {
		return validateRequiredPattern(stringField(f, "state"), stateRegex, "State/Territory")
	}},
	{"postcode", func(f model.FormContent, _ time.Time) string {
		return validateRequiredPattern(stringField(f, "postcode"), postcodeRegex, "Postcode")
	}},
	{"isMinor", func(f model.FormContent, _ time.Time) string {
		return validateBool(f, "isMinor", "Minor status is required.")
	}},
	// The guardian fields depend on the minor status.
	{"guardianName", func(f model.FormContent, _ time.Time) string {
		return validateGuardianName(f)
	}},
	{"guardianPhone", func(f model.FormContent, _ time.Time) string {
		return validateGuardianPhone(f)
	}},
	{"studyGroup", func(f model.FormContent, _ time.Time) string {
		if stringField(f, "studyGroup") == "" {
			return "Please select a study group."
		}
		return ""
	}},
	{"studyInterest", func(f model.FormContent, _ time.Time) string {
		if stringField(f, "studyInterest") == "" {
			return "Please select your area of interest in the study."
		}
		return ""
	}},
	{"healthConditions", func(f model.FormContent, _ time.Time) string {
		if len(stringField(f, "healthConditions")) > maxHealthConditionsLength {
			return "Health conditions should not exceed 500 characters."
		}
		return ""
	}},
	{"contactConsent", func(f model.FormContent, _ time.Time) string {
		return validateBool(f, "contactConsent", "Contact Consent is required.")
	}},
	{"mediaConsent", func(f model.FormContent, _ time.Time) string {
		return validateBool(f, "mediaConsent", "Media Consent is required.")
	}},
}

// ValidateSubmission runs every field rule over the form data, the scanned
// document and the administrator identity and returns the accumulated
// field-name to message map. A nil map means the submission is valid.
func ValidateSubmission(form model.FormContent, scanned *model.ScannedForm, admin *model.Submitter, now time.Time) map[string]string {
	errors := make(map[string]string)

	for _, rule := range formRules {
		if msg := rule.validate(form, now); msg != "" {
			errors[rule.field] = msg
		}
	}

	if scanned != nil {
		if msg := validateScannedForm(scanned.Base64Data); msg != "" {
			errors["base64Data"] = msg
		}
		if msg := validateScannedFormFileName(scanned.FileName); msg != "" {
			errors["fileName"] = msg
		}
	}

	if admin != nil {
		if strings.TrimSpace(admin.ID) == "" {
			errors["id"] = "Admin id is required."
		}
		if strings.TrimSpace(admin.Name) == "" {
			errors["name"] = "Admin first name is required."
		}
		if strings.TrimSpace(admin.FamilyName) == "" {
			errors["familyName"] = "Admin family name is required."
		}
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}

// IsStructurallyValid reports whether all required top-level sections are
// present. A missing section short-circuits field validation entirely and is
// reported as a single structural error.
func IsStructurallyValid(form model.FormContent, scanned *model.ScannedForm, admin *model.Submitter) bool {
	return form != nil && scanned != nil && admin != nil
}

// DecodePDF strips an optional data-URI prefix, decodes the base64 payload
// and verifies the PDF magic number, returning the raw document bytes.
func DecodePDF(base64Data string) ([]byte, bool) {
	payload := base64Data
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(decoded) < len(pdfSignature) {
		return nil, false
	}
	for i, b := range pdfSignature {
		if decoded[i] != b {
			return nil, false
		}
	}
	return decoded, true
}

func stringField(form model.FormContent, key string) string {
	if form == nil {
		return ""
	}
	s, _ := form[key].(string)
	return s
}

func boolField(form model.FormContent, key string) (bool, bool) {
	if form == nil {
		return false, false
	}
	b, ok := form[key].(bool)
	return b, ok
}

func validatePersonName(value, fieldName string) string {
	if value == "" {
		return fieldName + " is required."
	}
	if len(value) > maxNameLength {
		return fieldName + " should not exceed 50 characters."
	}
	if !nameRegex.MatchString(value) {
		return "Invalid " + fieldName
	}
	return ""
}

func validateRequired(value, fieldName string) string {
	if value == "" {
		return fieldName + " is required."
	}
	return ""
}

func validateRequiredPattern(value string, pattern *regexp.Regexp, fieldName string) string {
	if value == "" {
		return fieldName + " is required."
	}
	if !pattern.MatchString(value) {
		return "Invalid " + fieldName
	}
	return ""
}

func validateDateOfBirth(dob string, now time.Time) string {
	if dob == "" {
		return "Date of Birth is required."
	}

	// Strict parse: DD-MM-YYYY and a real calendar date (time.Parse rejects
	// normalized dates such as 31-02-2000).
	date, err := time.Parse(dateOfBirthLayout, dob)
	if err != nil {
		return "Invalid date of birth."
	}

	if !date.Before(now) {
		return "Date of Birth cannot be in the future."
	}
	if date.Before(minDateOfBirth) {
		return "Date of Birth cannot be earlier than January 1, 1900."
	}
	return ""
}

// validateBool requires a literal boolean value, not merely a truthy one.
func validateBool(form model.FormContent, key, message string) string {
	if _, ok := boolField(form, key); !ok {
		return message
	}
	return ""
}

func validateGuardianName(form model.FormContent) string {
	if minor, ok := boolField(form, "isMinor"); !ok || !minor {
		return ""
	}
	value := stringField(form, "guardianName")
	if value == "" {
		return "Guardian's Name is required."
	}
	if !guardianNameRegex.MatchString(value) {
		return "Invalid Guardian's Name"
	}
	return ""
}

func validateGuardianPhone(form model.FormContent) string {
	if minor, ok := boolField(form, "isMinor"); !ok || !minor {
		return ""
	}
	value := stringField(form, "guardianPhone")
	if value == "" {
		return "Guardian's Phone Number is required."
	}
	if !contactNumberRegex.MatchString(value) {
		return "Invalid Guardian's Phone Number"
	}
	return ""
}

func validateScannedForm(base64Data string) string {
	if base64Data == "" {
		return "Scanned Form is required."
	}
	if _, ok := DecodePDF(base64Data); !ok {
		return "Form must be PDF document."
	}
	return ""
}

func validateScannedFormFileName(fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		return "Scanned document file name is required."
	}
	return ""
}
