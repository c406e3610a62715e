package config

import "time"

type AuthConfig interface {
	GetTokenSecret() string
	GetTokenIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAppleClientID() string
	GetAppleClientSecret() string
	GetAppleRedirectURL() string
	GetAppleIssuerURL() string
	GetBlacklistSweepInterval() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "dev-only-secret")
}

func (Auth) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "varsity-auth")
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return durationEnv("ACCESS_TOKEN_EXPIRY", 30*time.Minute)
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return durationEnv("REFRESH_TOKEN_EXPIRY", 14*24*time.Hour)
}

func (Auth) GetAppleClientID() string {
	return GetEnv("APPLE_CLIENT_ID", "")
}

// GetAppleClientSecret returns the signed client secret for the web
// authorization-code flow. Empty disables that flow; mobile clients submit
// the identity token directly and need no secret.
func (Auth) GetAppleClientSecret() string {
	return GetEnv("APPLE_CLIENT_SECRET", "")
}

func (Auth) GetAppleRedirectURL() string {
	return GetEnv("APPLE_REDIRECT_URL", "")
}

func (Auth) GetAppleIssuerURL() string {
	return GetEnv("APPLE_ISSUER_URL", "https://appleid.apple.com")
}

func (Auth) GetBlacklistSweepInterval() time.Duration {
	return durationEnv("BLACKLIST_SWEEP_INTERVAL", 10*time.Minute)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
