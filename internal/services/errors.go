package services

import "errors"

// Sentinel errors surfaced by the ledger and pricing resolver. Handlers map
// them to HTTP status classes with errors.Is.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrMissingFeeFields     = errors.New("fee item and fee date are required")
	ErrInvalidCadence       = errors.New("invalid payment cadence")
	ErrInvalidAmount        = errors.New("resolved amount must be positive")
	ErrDepositExceedsTotal  = errors.New("deposit exceeds total amount")
	ErrInvalidPaymentAmount = errors.New("payment amount out of range")

	ErrStudentHasPayments = errors.New("student has payment records")
	ErrCourseHasPayments  = errors.New("course has payment records")
)
