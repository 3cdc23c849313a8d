package main

import "fmt"

// configError wraps a configuration-loading or validation failure so main
// can map it to exit code 1.
type configError struct{ err error }

func (e *configError) Error() string { return fmt.Sprintf("configuration error: %v", e.err) }
func (e *configError) Unwrap() error { return e.err }
func (e *configError) ExitCode() int { return configErrorExitCode }

// gatewayError wraps a model-gateway connectivity failure detected at
// startup so main can map it to exit code 2.
type gatewayError struct{ err error }

func (e *gatewayError) Error() string { return fmt.Sprintf("model gateway unavailable: %v", e.err) }
func (e *gatewayError) Unwrap() error { return e.err }
func (e *gatewayError) ExitCode() int { return gatewayUnavailableCode }
