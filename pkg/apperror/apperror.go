package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Category groups errors by how a caller is expected to react to them.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryValidation     Category = "validation"
	CategoryNotFound       Category = "not_found"
	CategoryConflict       Category = "conflict"
	CategoryDomainState    Category = "domain_state"
	CategoryCascade        Category = "cascade"
	CategoryInfrastructure Category = "infrastructure"
)

// Error is a categorized error with a stable code.
// Two errors are equal under errors.Is when their codes match.
type Error struct {
	Category Category `json:"category"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func New(category Category, code, message string) *Error {
	return &Error{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Authentication
var (
	ErrInvalidCredential  = New(CategoryAuthentication, "INVALID_CREDENTIAL", "invalid or expired credential")
	ErrSubjectNotFound    = New(CategoryAuthentication, "SUBJECT_NOT_FOUND", "subject no longer exists")
	ErrSubjectDeactivated = New(CategoryAuthentication, "SUBJECT_DEACTIVATED", "subject is deactivated")
)

// AccessDeniedCode is the only code exposed for authorization failures.
const AccessDeniedCode = "ACCESS_DENIED"

// Authorization
var (
	ErrNotOwner         = New(CategoryAuthorization, "NOT_OWNER", "principal does not own the resource")
	ErrRoleNotPermitted = New(CategoryAuthorization, "ROLE_NOT_PERMITTED", "role may not perform this action")
)

// Validation
var (
	ErrMissingField       = New(CategoryValidation, "MISSING_FIELD", "a required field is missing")
	ErrInvalidField       = New(CategoryValidation, "INVALID_FIELD", "a field has an invalid value")
	ErrInvalidStatusValue = New(CategoryValidation, "INVALID_STATUS_VALUE", "unknown status value")
	ErrReasonRequired     = New(CategoryValidation, "REASON_REQUIRED", "a cancellation reason is required")
	ErrNotTelemedicine    = New(CategoryValidation, "NOT_TELEMEDICINE", "appointment is not a telemedicine appointment")
	ErrAppointmentInPast  = New(CategoryValidation, "APPOINTMENT_IN_PAST", "cannot book a slot in the past")
)

// Not found
var (
	ErrUserNotFound        = New(CategoryNotFound, "USER_NOT_FOUND", "user not found")
	ErrDoctorNotFound      = New(CategoryNotFound, "DOCTOR_NOT_FOUND", "doctor not found")
	ErrPatientNotFound     = New(CategoryNotFound, "PATIENT_NOT_FOUND", "patient not found")
	ErrAppointmentNotFound = New(CategoryNotFound, "APPOINTMENT_NOT_FOUND", "appointment not found")
	ErrSessionNotFound     = New(CategoryNotFound, "SESSION_NOT_FOUND", "telemedicine session not found")
	ErrAuditLogNotFound    = New(CategoryNotFound, "AUDIT_LOG_NOT_FOUND", "audit log not found")
)

// Conflict
var (
	ErrSlotAlreadyBooked    = New(CategoryConflict, "SLOT_ALREADY_BOOKED", "the requested slot is already booked")
	ErrSessionAlreadyExists = New(CategoryConflict, "SESSION_ALREADY_EXISTS", "a telemedicine session already exists for this appointment")
	ErrDoctorUnavailable    = New(CategoryConflict, "DOCTOR_UNAVAILABLE", "doctor is not accepting new bookings")
	ErrEmailAlreadyExists   = New(CategoryConflict, "EMAIL_ALREADY_EXISTS", "email already exists")
	ErrProfileAlreadyExists = New(CategoryConflict, "PROFILE_ALREADY_EXISTS", "profile identifier already exists")
)

// Domain state
var (
	ErrIllegalTransition = New(CategoryDomainState, "ILLEGAL_TRANSITION", "transition is not allowed from the current status")
)

// Cascade
var (
	ErrPartialFailure = New(CategoryCascade, "PARTIAL_FAILURE", "state change committed but a dependent update failed")
)

// Infrastructure
var (
	ErrTimeout          = New(CategoryInfrastructure, "TIMEOUT", "operation exceeded its deadline")
	ErrStoreUnavailable = New(CategoryInfrastructure, "STORE_UNAVAILABLE", "backing store is unavailable")
)

// Infra classifies an error escaping the store layer. Already categorized
// errors pass through untouched; deadline and cancellation become ErrTimeout.
func Infra(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout.Wrap(err)
	}
	return ErrStoreUnavailable.Wrap(err)
}

// CategoryOf reports the category of err, or "" for uncategorized errors.
func CategoryOf(err error) Category {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryInfrastructure
	}
	return ""
}

// CodeOf reports the stable code of err, or "" for uncategorized errors.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
