package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// Environment is the deployment environment (development, production).
	Environment string `mapstructure:"environment" default:"development"`
	// MetricsPath is where Prometheus metrics are exposed. Empty disables it.
	MetricsPath string `mapstructure:"metrics_path" default:"/metrics"`
	// CorsOrigins is a comma separated list of allowed origins.
	CorsOrigins string `mapstructure:"cors_origins" default:"*"`
}

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// IsValidEnvironment checks if the configured environment is valid.
func (c Config) IsValidEnvironment() bool {
	switch c.Environment {
	case EnvironmentDevelopment, EnvironmentProduction:
		return true
	default:
		return false
	}
}

// IsProduction reports whether the server runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
