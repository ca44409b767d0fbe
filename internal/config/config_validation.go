package config

import "time"

// applyDefaults fills scheduling knobs that safely default when unset.
// Identity, DSN and addresses are deliberately left to validation: running a
// host without them is an operator error, not a defaultable state.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Workers.OutboxInterval <= 0 {
		cfg.Workers.OutboxInterval = 5 * time.Second
	}
	if cfg.Workers.OutboxBatchSize <= 0 {
		cfg.Workers.OutboxBatchSize = 25
	}
	if cfg.Workers.SweepInterval <= 0 {
		cfg.Workers.SweepInterval = time.Minute
	}
	if cfg.Workers.SweepIdleAfter <= 0 {
		cfg.Workers.SweepIdleAfter = 10 * time.Minute
	}
	if cfg.Host.TokenDuration <= 0 {
		cfg.Host.TokenDuration = time.Hour
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
}

// validate checks that the final merged [StructuredConfig] satisfies the
// host's startup invariants.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Host.Identity == "" {
		return ErrInvalidHostConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.Drive.RootDir == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
