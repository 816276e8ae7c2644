package services

import (
	"errors"
	"strings"

	"github.com/davidfaure/closecall/internal/functions"
)

// ErrorClass is the user-facing failure category of an analysis error.
type ErrorClass string

const (
	ClassQuotaExceeded        ErrorClass = "quota_exceeded"
	ClassInvalidAPIKey        ErrorClass = "invalid_api_key"
	ClassMissingConfiguration ErrorClass = "missing_configuration"
	ClassGenericWithMessage   ErrorClass = "generic_with_message"
	ClassGenericUnknown       ErrorClass = "generic_unknown"
)

// Classification is the outcome of one failure-handling pass. It only
// selects a notification message; the original error is what propagates.
type Classification struct {
	Class   ErrorClass
	Message string // raw message carried by the error, may be empty
}

// ClassifyAnalysisError maps a raw analysis failure to exactly one category.
//
// The precedence is fixed and ordered, first match wins: quota before
// API key before configuration before generic. Error payloads can satisfy
// several conditions at once (a quota failure also carries a message), so
// the most specific category must be checked first.
func ClassifyAnalysisError(err error) Classification {
	var message, errorType, providerCode string

	var fnErr *functions.FunctionError
	if errors.As(err, &fnErr) {
		message = fnErr.Message
		errorType = fnErr.ErrorType
		providerCode = fnErr.ProviderCode()
	} else if err != nil {
		message = err.Error()
	}

	switch {
	case strings.Contains(message, "quota") || providerCode == "insufficient_quota":
		return Classification{Class: ClassQuotaExceeded, Message: message}
	case errorType == "api_key" || providerCode == "invalid_api_key":
		return Classification{Class: ClassInvalidAPIKey, Message: message}
	case errorType == "configuration":
		return Classification{Class: ClassMissingConfiguration, Message: message}
	case message != "":
		return Classification{Class: ClassGenericWithMessage, Message: message}
	default:
		return Classification{Class: ClassGenericUnknown, Message: message}
	}
}
