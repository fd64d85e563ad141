// Package errs defines the error taxonomy shared by the featurespace packages.
//
// Callers test for a category with errors.Is; the concrete message carries
// the offending parameter or cell.
//
//	if errors.Is(err, errs.ErrInvalidParameter) {
//	    // surface to the user, do not retry
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a bad period, k, hyperparameter or shape.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDecomposition reports a series too short or degenerate for the
	// requested seasonal period.
	ErrDecomposition = errors.New("decomposition failed")

	// ErrNonNumericInput reports a feature matrix with a non-numeric cell.
	ErrNonNumericInput = errors.New("input containing non-numeric values")

	// ErrUnsupportedFormat reports an upload that is neither .csv nor .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// InvalidParameter wraps ErrInvalidParameter with a formatted detail.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// Decomposition wraps ErrDecomposition with a formatted detail.
func Decomposition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecomposition, fmt.Sprintf(format, args...))
}

// NonNumeric wraps ErrNonNumericInput with a formatted detail.
func NonNumeric(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNonNumericInput, fmt.Sprintf(format, args...))
}

// UnsupportedFormat wraps ErrUnsupportedFormat with a formatted detail.
func UnsupportedFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, fmt.Sprintf(format, args...))
}
