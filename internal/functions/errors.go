package functions

import (
	"encoding/json"
	"fmt"
)

// FunctionError is the loosely-structured error shape remote functions
// report. Every field is optional; callers that need to branch on it should
// go through a dedicated classification step rather than poking at fields
// inline.
type FunctionError struct {
	Function   string `json:"-"`
	StatusCode int    `json:"-"`

	Message   string `json:"message,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
	Details   struct {
		Error struct {
			Code string `json:"code,omitempty"`
		} `json:"error"`
	} `json:"details"`
}

func (e *FunctionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("function %s failed with status %d", e.Function, e.StatusCode)
}

// ProviderCode returns the nested provider error code, if any.
func (e *FunctionError) ProviderCode() string {
	return e.Details.Error.Code
}

// parseFunctionError decodes an error response body. Bodies that are not
// valid JSON still produce a usable FunctionError with an empty message.
func parseFunctionError(name string, status int, payload []byte) *FunctionError {
	fnErr := &FunctionError{Function: name, StatusCode: status}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, fnErr)
	}
	return fnErr
}
