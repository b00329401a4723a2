package repository

import "errors"

// Sentinel kinds for observation store errors.
var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrSeriesNotFound  = errors.New("series not found")
	ErrEmptyPatientID  = errors.New("empty patient id")
)
