package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidHostConfigs indicates missing tenant settings
	// (for example, an empty identity domain).
	ErrInvalidHostConfigs = errors.New("invalid host configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN or drive root directory).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates invalid server settings
	// (for example, a missing listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
