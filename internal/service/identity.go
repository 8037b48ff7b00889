package service

import (
	"context"
)

// ExternalIdentity is a user asserted by a third-party identity provider
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier validates a provider-issued credential
type IdentityVerifier interface {
	// Verify checks signature, audience, issuer and expiry of credential
	Verify(ctx context.Context, credential string) (*ExternalIdentity, error)
}
