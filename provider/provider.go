package provider

import "context"

// Identity is the normalized result of a verified external login.
// Implementations return identity facts only; account creation,
// linking, and token issuance stay with the session manager.
type Identity struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// Provider is the contract every external identity provider
// implements.
type Provider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the provider's authorization URL for the
	// redirect step. State is supplied by the caller.
	AuthCodeURL(state string) string

	// Exchange swaps the authorization code for provider credentials
	// and returns a verified identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
