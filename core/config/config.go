package config

import (
	"reflect"
	"strings"

	"commerce-sync/core/database"
	"commerce-sync/core/lock"
	"commerce-sync/core/logger"
	"commerce-sync/core/reconcile"
	"commerce-sync/core/server"
	"commerce-sync/core/shopify"
	"commerce-sync/core/storage"
	"commerce-sync/core/token"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the sync report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Shopify holds configuration for the Admin API client.
	Shopify shopify.Config `mapstructure:"shopify"`
	// Auth holds configuration for bearer tokens.
	Auth token.Config `mapstructure:"auth"`
	// Lock holds configuration for the per-tenant sync lock.
	Lock lock.Config `mapstructure:"lock"`
	// Sync holds configuration for the sync engine.
	Sync reconcile.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SHOPIFY_API_VERSION -> shopify.api_version)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
