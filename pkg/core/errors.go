package core

import (
	"errors"
	"fmt"
)

// Sentinel errors of the device layer. Typed errors below unwrap to these,
// so callers can branch with errors.Is and inspect context with errors.As.
var (
	ErrValueOutOfRange       = errors.New("value out of range")
	ErrUnsupportedDomain     = errors.New("unsupported domain")
	ErrUnsupportedImportType = errors.New("unsupported import type")
	ErrConnectionFailure     = errors.New("connection failure")
	ErrTransactionFailure    = errors.New("transaction failure")
	ErrUnsupportedOperator   = errors.New("unsupported operator")
	ErrDeviceNotStarted      = errors.New("device not started")
)

// ValueOutOfRangeError is returned when a value has no representation in the
// target domain.
type ValueOutOfRangeError struct {
	Type  ScalarType
	Value any
	Limit string
}

func (e *ValueOutOfRangeError) Error() string {
	if e.Limit != "" {
		return fmt.Sprintf("value %v of type %s is out of range (%s)", e.Value, e.Type, e.Limit)
	}
	return fmt.Sprintf("value %v of type %s is out of range", e.Value, e.Type)
}

func (e *ValueOutOfRangeError) Unwrap() error { return ErrValueOutOfRange }

// UnsupportedDomainError is returned when no mapping exists for a scalar type
// or for a harvested native domain name.
type UnsupportedDomainError struct {
	Domain string
}

func (e *UnsupportedDomainError) Error() string {
	return fmt.Sprintf("unsupported domain %q", e.Domain)
}

func (e *UnsupportedDomainError) Unwrap() error { return ErrUnsupportedDomain }

// UnsupportedImportTypeError is returned when a native domain name requested
// directly has no mapping.
type UnsupportedImportTypeError struct {
	NativeDomainName string
}

func (e *UnsupportedImportTypeError) Error() string {
	return fmt.Sprintf("unsupported import type %q", e.NativeDomainName)
}

func (e *UnsupportedImportTypeError) Unwrap() error { return ErrUnsupportedImportType }

// UnsupportedOperatorError is returned when no translation is registered for
// an instruction identity.
type UnsupportedOperatorError struct {
	Operator string
	Dialect  string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Dialect != "" {
		return fmt.Sprintf("operator %q is not supported by the %s device", e.Operator, e.Dialect)
	}
	return fmt.Sprintf("operator %q is not supported", e.Operator)
}

func (e *UnsupportedOperatorError) Unwrap() error { return ErrUnsupportedOperator }

// ConnectionFailureError wraps a native connect or execute failure.
type ConnectionFailureError struct {
	Op    string
	Cause error
}

func (e *ConnectionFailureError) Error() string {
	return fmt.Sprintf("connection failure during %s: %v", e.Op, e.Cause)
}

// Unwrap exposes both the sentinel and the native cause.
func (e *ConnectionFailureError) Unwrap() []error { return []error{ErrConnectionFailure, e.Cause} }

// TransactionFailureError is returned when a support-operator batch fails.
// The enclosing transaction has been rolled back when this error is seen.
type TransactionFailureError struct {
	Batch int
	Cause error
}

func (e *TransactionFailureError) Error() string {
	return fmt.Sprintf("support operator batch %d failed, transaction rolled back: %v", e.Batch, e.Cause)
}

// Unwrap exposes both the sentinel and the native cause.
func (e *TransactionFailureError) Unwrap() []error { return []error{ErrTransactionFailure, e.Cause} }
