package config

// GoogleConfig contains the federated login provider settings.
// The endpoint URLs default to Google and are only overridden in tests.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI" env-default:"http://localhost:4001/auth/google/callback"`
	AuthURL      string `env:"GOOGLE_AUTH_URL" env-default:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string `env:"GOOGLE_TOKEN_URL" env-default:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `env:"GOOGLE_USERINFO_URL" env-default:"https://www.googleapis.com/oauth2/v2/userinfo"`
}

// HasClientID reports whether the authorization URL can be built.
func (c GoogleConfig) HasClientID() bool {
	return c.ClientID != ""
}

// IsConfigured reports whether the code exchange can be performed.
func (c GoogleConfig) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
