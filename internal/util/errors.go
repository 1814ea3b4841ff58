package util

import "errors"

var (
	ErrModuleNotFound      = errors.New("module not found")
	ErrInvalidAccessCode   = errors.New("invalid access code")
	ErrModuleInactive      = errors.New("module is not active")
	ErrInvalidWaiverStatus = errors.New("waiver_status must be 1 (agree), 2 (decline) or 3 (ineligible)")
	ErrMissingStudentID    = errors.New("student_id is required")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAccessCodeExhausted = errors.New("could not find an unused access code")
	ErrModuleNameTaken     = errors.New("a module with this name already exists")
)
