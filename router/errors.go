package router

import "fmt"

// UnresolvedModelError reports a catalog miss: the model hint does not
// resolve to any known provider format.
type UnresolvedModelError struct {
	Model string
}

func (e *UnresolvedModelError) Error() string {
	return fmt.Sprintf("router: unresolved model %q", e.Model)
}

// UnsupportedFormatError reports that no registered adapter claimed the
// caller's body during source-format detection.
type UnsupportedFormatError struct{}

func (e *UnsupportedFormatError) Error() string { return "router: could not detect source wire format" }

// AuthError reports a credential acquisition failure. It is never retried
// beyond the credential manager's own refresh policy.
type AuthError struct {
	Provider string
	Cause    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("router: credential acquisition failed for %s: %v", e.Provider, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// UpstreamHTTPError reports a non-2xx response from the provider after the
// retry budget has been exhausted or the status was non-retriable.
type UpstreamHTTPError struct {
	Status            int
	ProviderErrorKind string
	Message   string
	Retriable bool
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("router: upstream http %d: %s", e.Status, e.Message)
}

// ProviderNotConfiguredError reports that the catalog resolved a provider
// format for which the Router has no registered ProviderConfig (credential,
// endpoint).
type ProviderNotConfiguredError struct {
	Format string
}

func (e *ProviderNotConfiguredError) Error() string {
	return fmt.Sprintf("router: no provider configuration registered for format %q", e.Format)
}
