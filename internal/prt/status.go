package prt

import (
	"errors"
	"fmt"
)

// Status is an engine result code.
type Status int

const (
	StatusOK Status = iota
	StatusUnspecifiedError
	StatusOutOfMemory
	StatusNoLicense
	StatusNotAllArgumentsSet
	StatusFileNotFound
	StatusResolveMapProviderNotFound
	StatusInvalidURI
	StatusEncoderNotFound
	StatusInvalidEncoderOptions
	StatusInitialShapeFailed
	StatusRuleFileNotFound
	StatusStartRuleNotFound
	StatusKeyNotFound
	StatusKeyNotSupported
	StatusIllegalCallbackObject
	StatusCanceled
)

var statusDescriptions = map[Status]string{
	StatusOK:                         "OK",
	StatusUnspecifiedError:           "unspecified error",
	StatusOutOfMemory:                "out of memory",
	StatusNoLicense:                  "no license",
	StatusNotAllArgumentsSet:         "not all arguments set",
	StatusFileNotFound:               "file not found",
	StatusResolveMapProviderNotFound: "no resolve map provider for URI",
	StatusInvalidURI:                 "invalid URI",
	StatusEncoderNotFound:            "encoder not found",
	StatusInvalidEncoderOptions:      "invalid encoder options",
	StatusInitialShapeFailed:         "initial shape could not be created",
	StatusRuleFileNotFound:           "rule file not found",
	StatusStartRuleNotFound:          "start rule not found",
	StatusKeyNotFound:                "key not found",
	StatusKeyNotSupported:            "key not supported",
	StatusIllegalCallbackObject:      "illegal callback object",
	StatusCanceled:                   "canceled",
}

// Description returns the human readable description of s.
func (s Status) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return fmt.Sprintf("unknown status %d", int(s))
}

func (s Status) String() string {
	return s.Description()
}

// Err returns nil for StatusOK and a *StatusError otherwise.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError wraps a non-OK status.
type StatusError struct {
	Status Status
	Op     string
}

func (e *StatusError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Status.Description(), int(e.Status))
	}
	return fmt.Sprintf("%s (%d)", e.Status.Description(), int(e.Status))
}

// StatusOf extracts the engine status from err, StatusUnspecifiedError if
// err carries none and StatusOK for nil.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusUnspecifiedError
}

// Errorf returns a StatusError for op.
func Errorf(op string, s Status) error {
	return &StatusError{Status: s, Op: op}
}
