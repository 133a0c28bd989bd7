package shopify

// Config holds configuration for the Shopify Admin API client.
type Config struct {
	// ApiKey is the app's API key.
	ApiKey string `mapstructure:"api_key" default:""`
	// ApiSecret is the app's API secret.
	ApiSecret string `mapstructure:"api_secret" default:""`
	// ApiVersion is the Admin API version requested.
	ApiVersion string `mapstructure:"api_version" default:"2024-10"`
	// PageSize bounds the records returned per request (max 250).
	PageSize int `mapstructure:"page_size" default:"250"`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// BaseURL, when set, replaces https://{shop} as the request origin.
	BaseURL string `mapstructure:"base_url" default:""`
}

// MaxPageSize is the largest page the Admin API serves.
const MaxPageSize = 250
