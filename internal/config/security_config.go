package config

type SecurityConfig interface {
	GetBcryptCost() int
	GetRotateRefreshTokens() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetBcryptCost() int {
	return 10
}

func (Security) GetRotateRefreshTokens() bool {
	return GetEnv("ROTATE_REFRESH_TOKENS", "true") != "false"
}
