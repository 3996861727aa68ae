package core

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	spamKeywords = []string{"viagra", "casino", "lottery", "crypto mining"}
)

func isValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

func isSpam(message string) bool {
	text := strings.ToLower(message)
	for _, keyword := range spamKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func validateSubmission(input SubmissionInput) error {
	var messages []string
	required := []struct {
		value   string
		message string
	}{
		{input.OrgName, "Organization name is required"},
		{input.ContactName, "Contact name is required"},
		{input.Email, "Email is required"},
		{input.Location, "Location is required"},
		{input.AboutOrg, "Organization description is required"},
		{input.WhyMural, "Why you want a mural is required"},
		{input.WallDetails, "Wall/surface details are required"},
	}
	for _, field := range required {
		if blank(field.value) {
			messages = append(messages, field.message)
		}
	}
	if input.Email != "" && !isValidEmail(input.Email) {
		messages = append(messages, "Invalid email format")
	}
	if input.AuthCheckbox != "true" {
		messages = append(messages, "You must confirm you are authorized to submit")
	}
	if input.AgreeCheckbox != "true" {
		messages = append(messages, "You must agree to the terms")
	}

	if len(messages) > 0 {
		return newValidationError(messages...)
	}
	return nil
}

// validateContact rejects spam before anything else, so flagged messages get the
// same answer whatever the other fields hold.
func validateContact(input ContactInput) error {
	if isSpam(input.Message) {
		return ErrSpam
	}
	if input.Name == "" || input.Email == "" || input.ProjectType == "" || input.Message == "" {
		return newValidationError("All fields are required")
	}
	if !isValidEmail(input.Email) {
		return newValidationError("Invalid email address")
	}
	return nil
}

func validateMural(input MuralInput) error {
	if input.Title == "" || input.Latitude == 0 || input.Longitude == 0 {
		return newValidationError("Missing required fields.")
	}
	return nil
}
