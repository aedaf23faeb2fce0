package domain

import (
	"errors"
	"fmt"
)

// ErrCountryNotFound is returned when the dataset has no entry for a country.
// Callers show "No data available" rather than failing.
var ErrCountryNotFound = errors.New("country not found in dataset")

// FetchError reports a failure to retrieve a remote or local source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a source whose payload could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
