package config

// LoggingConfig представляет конфигурацию логирования.
type LoggingConfig struct {
	Level string `env:"SHELL_LOGGER_LEVEL" env-default:"info"`
	Mode  string `env:"SHELL_LOGGER_MODE" env-default:"production"`
}
