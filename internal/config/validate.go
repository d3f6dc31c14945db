package config

import (
	"errors"
	"fmt"
	"strings"

	"debugsweep/internal/scanner"
)

var (
	// ErrInvalidMaxFileSize indicates a non-positive size ceiling
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrNoExtensions indicates an empty extension list
	ErrNoExtensions = errors.New("no file extensions configured")

	// ErrInvalidExtension indicates a malformed extension entry
	ErrInvalidExtension = errors.New("invalid file extension")

	// ErrInvalidBatchSize indicates a non-positive batch width
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidSeverity indicates an unknown gate severity
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidTabSize indicates a non-positive tab size
	ErrInvalidTabSize = errors.New("invalid tab size")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if err := validateGate(&cfg.Gate); err != nil {
		errs = append(errs, err)
	}

	if err := validateInsert(&cfg.Insert); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidMaxFileSize, cfg.MaxFileSize))
	}

	if len(cfg.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one extension required", ErrNoExtensions))
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("%w: %q must start with a dot", ErrInvalidExtension, ext))
		}
	}

	if cfg.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidBatchSize, cfg.BatchSize))
	}

	// Exclude patterns compile when the engine starts; malformed globs
	// surface there with the offending pattern.

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.Debounce < 0 {
		return fmt.Errorf("%w: debounce cannot be negative, got %s", ErrInvalidDebounce, cfg.Debounce)
	}
	return nil
}

func validateGate(cfg *GateConfig) error {
	switch scanner.Severity(cfg.FailSeverity) {
	case scanner.SeverityInfo, scanner.SeverityWarning, scanner.SeverityError:
		return nil
	default:
		return fmt.Errorf("%w: fail_severity must be info, warning or error, got %q", ErrInvalidSeverity, cfg.FailSeverity)
	}
}

func validateInsert(cfg *InsertConfig) error {
	if cfg.TabSize <= 0 {
		return fmt.Errorf("%w: tab_size must be positive, got %d", ErrInvalidTabSize, cfg.TabSize)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
