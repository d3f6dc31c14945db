package scanner

import "errors"

var (
	// ErrFileTooLarge marks a file skipped because its size exceeds the
	// configured ceiling. The file is recorded as a scan error and the batch
	// continues.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrScanInProgress is reported when a scan request overlaps a running
	// scan on the same engine. The overlapping call returns an empty result
	// instead of queueing; callers must tolerate that.
	ErrScanInProgress = errors.New("scan already in progress")
)
