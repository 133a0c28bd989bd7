// Package config provides configuration management for commerce-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (loaded with godotenv, overriding the process environment).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, environment, metrics path, CORS origins
//   - Log: logging level and format
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO settings of the sync report archive
//   - Shopify: Admin API version, page size, timeouts
//   - Auth: token secret and lifetime
//   - Lock: per-tenant lock backend (local or redis)
//   - Sync: malformed record policy and job timeout
//
// Defaults come from the `default` struct tags. Every key maps to an upper-case
// environment variable with dots replaced by underscores, e.g. shopify.page_size
// is SHOPIFY_PAGE_SIZE.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
