// Package config loads typed configuration from environment variables, with
// optional .env files and per-type caching.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: LoadEnv
// reads one or more .env files into the process environment, Load parses the
// environment into any annotated struct and caches the result by type, so a
// configuration struct is parsed at most once per process.
//
// # Usage
//
//	type Config struct {
//	    TickInterval time.Duration `env:"PULSE_TICK_INTERVAL" envDefault:"1ms"`
//	    BaseURL      string        `env:"PULSE_BASE_URL,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Load implicitly attempts to read a default .env from the working directory
// the first time it runs; a missing file is not an error.
//
// # Error Handling
//
// Sentinel errors compose with errors.Is: ErrParsingConfig (environment did
// not parse into the struct), ErrNilPointer (nil destination) and
// ErrLoadingEnvFile (an explicitly named .env file could not be read). Use
// ResetCache in tests to make a type parseable again after changing the
// environment.
package config
