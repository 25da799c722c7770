package validator

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/consent-intake-api/internal/intake/model"
)

var testNow = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func validForm() model.FormContent {
	return model.FormContent{
		"firstName":        "Alice",
		"lastName":         "Nguyen",
		"dateOfBirth":      "15-06-1990",
		"email":            "alice@example.com",
		"contactNumber":    "0412345678",
		"streetAddress":    "1 Example Street",
		"suburb":           "Newtown",
		"state":            "NSW",
		"postcode":         "2042",
		"isMinor":          false,
		"studyGroup":       "Group A",
		"studyInterest":    "Nutrition",
		"healthConditions": "",
		"contactConsent":   true,
		"mediaConsent":     false,
	}
}

func validScannedForm() *model.ScannedForm {
	return &model.ScannedForm{
		Base64Data: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 content")),
		FileName:   "consent.pdf",
	}
}

func validAdmin() *model.Submitter {
	return &model.Submitter{ID: "admin-1", Name: "Bob", FamilyName: "Jones"}
}

func TestValidateSubmissionValid(t *testing.T) {
	errors := ValidateSubmission(validForm(), validScannedForm(), validAdmin(), testNow)
	assert.Nil(t, errors)
}

func TestValidateSubmissionSingleBadField(t *testing.T) {
	form := validForm()
	form["postcode"] = "123"

	errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	require.Len(t, errors, 1)
	assert.Equal(t, "Invalid Postcode", errors["postcode"])
}

func TestValidateSubmissionAccumulatesAllErrors(t *testing.T) {
	form := validForm()
	form["firstName"] = ""
	form["postcode"] = "123"
	form["email"] = "not-an-email"

	errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Len(t, errors, 3)
	assert.Equal(t, "First Name is required.", errors["firstName"])
	assert.Equal(t, "Invalid Postcode", errors["postcode"])
	assert.Equal(t, "Invalid Email Address", errors["email"])
}

func TestValidateNameRules(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"missing", "", "First Name is required."},
		{"too long", strings.Repeat("a", 51), "First Name should not exceed 50 characters."},
		{"at limit", strings.Repeat("a", 50), ""},
		{"digits", "Alice3", "Invalid First Name"},
		{"spaces", "Alice Mary", "Invalid First Name"},
		{"wrong type", 42, "First Name is required."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			form["firstName"] = tc.value
			errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
			assert.Equal(t, tc.expected, errors["firstName"])
		})
	}
}

func TestValidateDateOfBirthRules(t *testing.T) {
	tests := []struct {
		name     string
		dob      string
		expected string
	}{
		{"missing", "", "Date of Birth is required."},
		{"wrong format", "1990-06-15", "Invalid date of birth."},
		{"impossible date", "31-02-2000", "Invalid date of birth."},
		{"today", "30-08-2026", ""},
		{"tomorrow", "31-08-2026", "Date of Birth cannot be in the future."},
		{"lower bound", "01-01-1900", ""},
		{"before lower bound", "31-12-1899", "Date of Birth cannot be earlier than January 1, 1900."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			form["dateOfBirth"] = tc.dob
			errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
			assert.Equal(t, tc.expected, errors["dateOfBirth"])
		})
	}
}

func TestValidateContactNumberPrefixes(t *testing.T) {
	form := validForm()

	for _, number := range []string{"0212345678", "0312345678", "0412345678", "0712345678", "0812345678"} {
		form["contactNumber"] = number
		errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
		assert.Empty(t, errors["contactNumber"], "number %s should be accepted", number)
	}

	for _, number := range []string{"0112345678", "0512345678", "041234567", "04123456789", "+61412345678"} {
		form["contactNumber"] = number
		errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
		assert.Equal(t, "Invalid Phone Number", errors["contactNumber"], "number %s should be rejected", number)
	}
}

func TestValidateStateEnum(t *testing.T) {
	form := validForm()

	for _, state := range []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"} {
		form["state"] = state
		errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
		assert.Empty(t, errors["state"])
	}

	form["state"] = "nsw"
	errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Equal(t, "Invalid State/Territory", errors["state"])
}

func TestValidateBooleanFieldsRequireLiteralBool(t *testing.T) {
	for _, tc := range []struct {
		field   string
		message string
	}{
		{"isMinor", "Minor status is required."},
		{"contactConsent", "Contact Consent is required."},
		{"mediaConsent", "Media Consent is required."},
	} {
		t.Run(tc.field, func(t *testing.T) {
			form := validForm()
			delete(form, tc.field)
			errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
			assert.Equal(t, tc.message, errors[tc.field])

			// A truthy non-boolean value is still rejected.
			form[tc.field] = "true"
			errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
			assert.Equal(t, tc.message, errors[tc.field])

			// Both literal booleans are accepted.
			form[tc.field] = false
			errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
			assert.Empty(t, errors[tc.field])
		})
	}
}

func TestGuardianFieldsRequiredOnlyForMinors(t *testing.T) {
	form := validForm()
	form["isMinor"] = true

	errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Equal(t, "Guardian's Name is required.", errors["guardianName"])
	assert.Equal(t, "Guardian's Phone Number is required.", errors["guardianPhone"])

	form["guardianName"] = "Mary Nguyen"
	form["guardianPhone"] = "0298765432"
	errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Nil(t, errors)

	form["guardianName"] = "Mary9"
	form["guardianPhone"] = "12345"
	errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Equal(t, "Invalid Guardian's Name", errors["guardianName"])
	assert.Equal(t, "Invalid Guardian's Phone Number", errors["guardianPhone"])

	// An adult never needs guardian details, even when present and invalid.
	form["isMinor"] = false
	errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Nil(t, errors)
}

func TestValidateHealthConditionsLength(t *testing.T) {
	form := validForm()
	form["healthConditions"] = strings.Repeat("x", 500)
	errors := ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Empty(t, errors["healthConditions"])

	form["healthConditions"] = strings.Repeat("x", 501)
	errors = ValidateSubmission(form, validScannedForm(), validAdmin(), testNow)
	assert.Equal(t, "Health conditions should not exceed 500 characters.", errors["healthConditions"])
}

func TestValidateScannedForm(t *testing.T) {
	scanned := validScannedForm()
	scanned.Base64Data = ""
	errors := ValidateSubmission(validForm(), scanned, validAdmin(), testNow)
	assert.Equal(t, "Scanned Form is required.", errors["base64Data"])

	scanned.Base64Data = base64.StdEncoding.EncodeToString([]byte("not a pdf"))
	errors = ValidateSubmission(validForm(), scanned, validAdmin(), testNow)
	assert.Equal(t, "Form must be PDF document.", errors["base64Data"])

	scanned = validScannedForm()
	scanned.FileName = "   "
	errors = ValidateSubmission(validForm(), scanned, validAdmin(), testNow)
	assert.Equal(t, "Scanned document file name is required.", errors["fileName"])
}

func TestValidateAdminIdentity(t *testing.T) {
	admin := &model.Submitter{}
	errors := ValidateSubmission(validForm(), validScannedForm(), admin, testNow)
	assert.Equal(t, "Admin id is required.", errors["id"])
	assert.Equal(t, "Admin first name is required.", errors["name"])
	assert.Equal(t, "Admin family name is required.", errors["familyName"])
}

func TestIsStructurallyValid(t *testing.T) {
	assert.True(t, IsStructurallyValid(validForm(), validScannedForm(), validAdmin()))
	assert.False(t, IsStructurallyValid(nil, validScannedForm(), validAdmin()))
	assert.False(t, IsStructurallyValid(validForm(), nil, validAdmin()))
	assert.False(t, IsStructurallyValid(validForm(), validScannedForm(), nil))
}

func TestDecodePDF(t *testing.T) {
	raw := []byte("%PDF-1.7 body")
	encoded := base64.StdEncoding.EncodeToString(raw)

	decoded, ok := DecodePDF(encoded)
	assert.True(t, ok)
	assert.Equal(t, raw, decoded)

	// Data-URI prefixes are stripped before decoding.
	decoded, ok = DecodePDF("data:application/pdf;base64," + encoded)
	assert.True(t, ok)
	assert.Equal(t, raw, decoded)

	_, ok = DecodePDF(base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.False(t, ok)

	_, ok = DecodePDF("%%%not-base64%%%")
	assert.False(t, ok)
}
