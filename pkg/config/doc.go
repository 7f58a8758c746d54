// Package config loads mailify configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more env files into the process environment.
//     Without it, Load falls back to an optional ./.env.
//   - Load parses the environment into any struct with `env` tags and caches
//     the result per type.
//   - MustLoad and MustLoadEnv panic instead of returning an error.
//   - ResetCache clears the cache between tests.
//
// Usage:
//
//	if err := config.LoadEnv("/etc/mailify/mailify.env"); err != nil {
//		return err
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Errors can be matched with errors.Is against ErrParsingConfig,
// ErrLoadingEnvFile, ErrConfigNotLoaded and ErrNilPointer.
package config
