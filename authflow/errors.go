package authflow

import "errors"

var (
	// ErrCSRFMismatch means the state echoed by the provider differs
	// from the one bound to the browser.
	ErrCSRFMismatch = errors.New("csrf token mismatch")

	// ErrUnknownState covers expired, already-consumed and never-issued
	// states alike.
	ErrUnknownState = errors.New("unknown or expired state")

	// ErrProviderExchange means the code-for-token exchange failed.
	ErrProviderExchange = errors.New("provider token exchange failed")

	// ErrProviderUserinfo means the userinfo request could not be made.
	ErrProviderUserinfo = errors.New("provider userinfo request failed")

	// ErrMalformedUserinfo means the userinfo response was not a JSON
	// object carrying a string email claim.
	ErrMalformedUserinfo = errors.New("malformed userinfo response")
)
