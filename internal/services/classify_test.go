package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidfaure/closecall/internal/functions"
)

func fnError(message, errorType, providerCode string) *functions.FunctionError {
	err := &functions.FunctionError{
		Function:   "analyze-call",
		StatusCode: 500,
		Message:    message,
		ErrorType:  errorType,
	}
	err.Details.Error.Code = providerCode
	return err
}

func TestClassifyAnalysisError_Precedence(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{
			name: "quota substring in message",
			err:  fnError("You exceeded your current quota", "", ""),
			want: ClassQuotaExceeded,
		},
		{
			name: "quota substring mid-message",
			err:  fnError("insufficient quota remaining for this key", "", ""),
			want: ClassQuotaExceeded,
		},
		{
			name: "provider code insufficient_quota without quota in message",
			err:  fnError("billing problem", "", "insufficient_quota"),
			want: ClassQuotaExceeded,
		},
		{
			name: "quota wins over api_key tag",
			err:  fnError("quota exhausted", "api_key", ""),
			want: ClassQuotaExceeded,
		},
		{
			name: "quota wins over configuration tag",
			err:  fnError("quota exhausted", "configuration", "insufficient_quota"),
			want: ClassQuotaExceeded,
		},
		{
			name: "api_key tag with unrelated message",
			err:  fnError("request rejected", "api_key", ""),
			want: ClassInvalidAPIKey,
		},
		{
			name: "provider code invalid_api_key",
			err:  fnError("", "", "invalid_api_key"),
			want: ClassInvalidAPIKey,
		},
		{
			name: "api_key wins over configuration",
			err:  fnError("", "api_key", ""),
			want: ClassInvalidAPIKey,
		},
		{
			name: "configuration tag",
			err:  fnError("something is off", "configuration", ""),
			want: ClassMissingConfiguration,
		},
		{
			name: "plain message only",
			err:  fnError("model overloaded", "", ""),
			want: ClassGenericWithMessage,
		},
		{
			name: "non-function error uses its message",
			err:  errors.New("connection refused"),
			want: ClassGenericWithMessage,
		},
		{
			name: "wrapped function error is still recognized",
			err:  fmt.Errorf("invoking: %w", fnError("", "api_key", "")),
			want: ClassInvalidAPIKey,
		},
		{
			name: "no message at all",
			err:  fnError("", "", ""),
			want: ClassGenericUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAnalysisError(tt.err)
			require.Equal(t, tt.want, got.Class)
		})
	}
}

func TestNotificationMessage(t *testing.T) {
	req := require.New(t)

	req.Equal(msgQuotaExceeded, NotificationMessage(Classification{Class: ClassQuotaExceeded}))
	req.Equal(msgInvalidAPIKey, NotificationMessage(Classification{Class: ClassInvalidAPIKey}))
	req.Equal(msgMissingConfiguration, NotificationMessage(Classification{Class: ClassMissingConfiguration}))
	req.Equal(msgGenericUnknown, NotificationMessage(Classification{Class: ClassGenericUnknown}))

	// The raw message is interpolated verbatim for generic failures.
	got := NotificationMessage(Classification{Class: ClassGenericWithMessage, Message: "model overloaded"})
	req.Contains(got, "model overloaded")
	req.Contains(got, "Erreur lors de l'analyse de l'appel")
}
