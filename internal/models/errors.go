package models

import "errors"

// Client related errors
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("a client with this email already exists")
	ErrInvalidClientEmail  = errors.New("invalid client email")
)

// Call related errors
var (
	ErrCallNotFound      = errors.New("call not found")
	ErrEmptyTranscript   = errors.New("call transcript is empty")
	ErrInvalidCallStatus = errors.New("invalid call status")
)

// Follow-up email related errors
var (
	ErrEmailNotFound      = errors.New("follow-up email not found")
	ErrInvalidEmailStatus = errors.New("invalid follow-up email status")
)
