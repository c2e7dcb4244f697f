// Package config loads service configuration from the environment.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct-tag parsing. Parse is generic and
// works with any tagged struct; Load parses the Config used by the access
// engine and validates it.
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Variables use section prefixes: AUTHORITY_*, PERMISSION_CACHE_*, REDIS_*,
// SESSION_*, LOG_* and SERVER_*. Values already present in the environment
// win over .env files.
package config
