package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found")
	ErrDatabase = errors.New("database error")

	// Session & Authorization Errors
	ErrSessionNotFound = errors.New("session not found")
	ErrUnauthorized    = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden       = errors.New("forbidden")    // Authenticated, but lacks permission

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)

// Error codes returned in ErrorResponse.Code
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeDatabaseUnavailable = "DATABASE_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)
