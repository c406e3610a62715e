package config

type Config interface {
	EnvConfig
	AuthConfig
	DispatchConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetPostgresDSN() string
}

type mainConfig struct {
	EnvVars
	Auth
	Dispatch
}

func New() Config {
	return mainConfig{}
}
