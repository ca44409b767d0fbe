package drive

import "errors"

var (
	// ErrFileNotFound indicates the referenced file, temp area, or part
	// does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnknownDrive indicates an empty or malformed drive id; ids that
	// are not a single clean path element never touch the filesystem.
	ErrUnknownDrive = errors.New("unknown target drive")

	// ErrQuarantinedContent indicates an attempt to commit a temp area that
	// still holds quarantined parts.
	ErrQuarantinedContent = errors.New("temp area holds quarantined content")
)
