package config

import "time"

type TokenConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "")
}

func (Tokens) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_ACCESS_TOKEN_SECRET", "")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return 100 * time.Second
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return 24 * time.Hour
}
