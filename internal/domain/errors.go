package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkNotFound means the slug has no catalog entry. Routine, maps to 404.
	ErrLinkNotFound = errors.New("link not found")

	// ErrPhoneRequired means neither the request nor the entry supplied a
	// phone number. User-correctable, maps to 400.
	ErrPhoneRequired = errors.New("phone number required")
)

// HostNotAllowedError means a built URL resolved to a host outside the
// allowlist. This indicates a misconfigured link entry, not bad user input,
// and maps to a generic 500.
type HostNotAllowedError struct {
	Host string
}

func (e *HostNotAllowedError) Error() string {
	return fmt.Sprintf("host %q is not in the redirect allowlist", e.Host)
}
