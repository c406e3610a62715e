package identity

import "context"

// Identity is the verified assertion returned by the external provider.
type Identity struct {
	SubjectID string // Provider-unique subject identifier
	Email     string
	Name      string
}

// Verifier validates an identity-provider assertion and returns the verified
// subject. The session orchestrator treats this as an opaque external call.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

// CodeVerifier supports the web login flow, where the client submits an
// authorization code and the provider returns the identity token server-side.
type CodeVerifier interface {
	VerifyAuthorizationCode(ctx context.Context, code string) (*Identity, error)
}
