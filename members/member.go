package members

import "time"

// Member is the identity record for an end user. SubjectID is the unique
// identifier asserted by the external identity provider.
type Member struct {
	ID          string
	SubjectID   string
	DisplayName string

	// RefreshTokenID holds the jti of the most recently issued refresh token
	// together with its expiry, so logout and account deletion can revoke it
	// without the client resubmitting the token.
	RefreshTokenID   string
	RefreshExpiresAt time.Time

	CreatedAt time.Time
}
