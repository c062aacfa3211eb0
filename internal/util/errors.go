package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrExamNotFound    = errors.New("exam not found")
	ErrContentNotFound = errors.New("content not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrSessionNotFound = errors.New("exam session not found")

	ErrInvalidScore      = errors.New("score must be between 0 and 100")
	ErrInvalidAnswer     = errors.New("answer does not match question shape")
	ErrMalformedScenario = errors.New("malformed scenario")

	ErrAttemptAlreadyGraded = errors.New("attempt already graded")
	ErrSessionClosed        = errors.New("exam session already finalized")

	ErrPlacementRequired = errors.New("placement exam required")
	ErrPermissionDenied  = errors.New("permission denied")

	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAdvisorUnavailable = errors.New("advisor unavailable")
)
