/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for the Hexaminer analysis core. Cursor bounds failures and
malformed headers are handled inside each analyzer; analyzer failures are surfaced to the
engine through AnalyzerError and converted into zero-confidence results there.
*/

package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfData is returned when a read runs past the end of the buffer slice.
	ErrEndOfData = errors.New("end of data")

	// ErrMalformedHeader is returned when a structural magic or signature check fails
	// after CanAnalyze already approved the buffer.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrAnalyzerFailure marks any other fault raised by a registered analyzer.
	ErrAnalyzerFailure = errors.New("analyzer failure")
)

// AnalyzerError carries the identity of the analyzer that failed along with the cause
type AnalyzerError struct {
	Analyzer string
	Err      error
}

// Error implements the error interface
func (e *AnalyzerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Analyzer, ErrAnalyzerFailure)
	}
	return fmt.Sprintf("%s: %v", e.Analyzer, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is / errors.As
func (e *AnalyzerError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAnalyzerFailure}
	}
	return []error{ErrAnalyzerFailure, e.Err}
}

// NewAnalyzerError wraps err as a failure of the named analyzer
func NewAnalyzerError(analyzer string, err error) *AnalyzerError {
	return &AnalyzerError{Analyzer: analyzer, Err: err}
}
