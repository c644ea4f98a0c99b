package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrMentorNotFound         = errors.New("mentor not found")
	ErrSessionLocked          = errors.New("session belongs to an active payout")
	ErrMentorHasDependents    = errors.New("mentor still has sessions, payouts or messages")
	ErrStorageNotConfigured   = errors.New("file storage is not configured")
)
