package sync

import "fmt"

// ConfigError reports an invalid root path. It is fatal: no pass runs
// until the configuration is fixed.
type ConfigError struct {
	Root string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid root %q: %v", e.Root, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AccessError reports a scan root that could not be read. It fails the
// current pass only; the next pass retries from scratch.
type AccessError struct {
	Root string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("scan %q: %v", e.Root, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
