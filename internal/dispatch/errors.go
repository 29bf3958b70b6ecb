package dispatch

import "fmt"

// ConfigError reports a notification config that cannot be sent: missing
// file, malformed YAML, or a missing/empty required field.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

// SendError reports a failed webhook delivery (network failure, timeout, or
// a non-2xx response).
type SendError struct {
	Path  string
	Cause error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s: %v", e.Path, e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }

// NotifyError reports a failed error-webhook delivery. It is terminal: the
// dispatcher logs it and never lets it replace the primary failure.
type NotifyError struct {
	Cause error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("error-webhook notify: %v", e.Cause)
}

func (e *NotifyError) Unwrap() error { return e.Cause }
