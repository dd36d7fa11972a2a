package config

type ProviderConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Provider) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (p Provider) GetGoogleRedirectURL() string {
	return GetEnv("GOOGLE_REDIRECT_URL", "")
}
