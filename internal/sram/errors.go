// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sram

import "errors"

var (
	// ErrFileNotFound reports that the input path is missing or unreadable.
	ErrFileNotFound = errors.New("input file not found")

	// ErrSizeMismatch reports a dump whose length is not DumpSize and that
	// was not forced through.
	ErrSizeMismatch = errors.New("unexpected dump size")

	// ErrInsufficientData reports a buffer too short to hold the SRAM region.
	ErrInsufficientData = errors.New("insufficient data for SRAM region")

	// ErrWriteFailure reports that the output file could not be written.
	ErrWriteFailure = errors.New("writing output failed")
)
