package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidPage is returned when a page below 1 is requested
var ErrInvalidPage = errors.New("page must be at least 1")

// NetworkError means no response was received (dial failure, timeout, reset)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-2xx answer from the metadata service or its proxy
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Message)
}

// ConfigError reports a proxy that has no credential configured
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}
