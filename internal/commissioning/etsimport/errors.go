package etsimport

import "errors"

// Sentinel errors for ETS import operations.
var (
	// ErrInvalidFile indicates the file is not a readable ETS project.
	ErrInvalidFile = errors.New("invalid ETS project file")

	// ErrInvalidExtension indicates the file name does not end in .knxproj.
	ErrInvalidExtension = errors.New("ETS project file must end with " + ProjectExtension)

	// ErrCorruptArchive indicates the ZIP archive is corrupted.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrMissingProjectFile indicates project.xml or 0.xml was not found.
	ErrMissingProjectFile = errors.New("project file not found in archive")

	// ErrFileTooLarge indicates the file exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)
