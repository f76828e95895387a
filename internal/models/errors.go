package models

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed pipeline errors through errors.Is.
var (
	ErrExtraction    = errors.New("extraction failed")
	ErrNotReady      = errors.New("stage not ready")
	ErrDatasetAccess = errors.New("dataset access failed")
)

// ExtractionError reports a source document that is missing or malformed.
type ExtractionError struct {
	Source string // Optional: URL or file the document came from
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := "extraction failed"
	if e.Source != "" {
		msg += fmt.Sprintf(" (source=%s)", e.Source)
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}

	return msg
}

func (e *ExtractionError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// NotReadyError reports a stage invoked before its prerequisite produced output.
type NotReadyError struct {
	Stage        string
	Prerequisite string
}

func (e *NotReadyError) Error() string {
	if e == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s: not ready: no %s has been produced", e.Stage, e.Prerequisite)
}

// Is reports whether target is ErrNotReady.
func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

// DatasetAccessError reports a tabular dataset that could not be read or written.
type DatasetAccessError struct {
	Op   string
	Path string // Optional
	Err  error
}

func (e *DatasetAccessError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Op + ": dataset access failed"
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}

	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}

	return msg
}

func (e *DatasetAccessError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is ErrDatasetAccess.
func (e *DatasetAccessError) Is(target error) bool {
	return target == ErrDatasetAccess
}
