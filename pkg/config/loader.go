package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// typeCache stores parsed configuration structs keyed by their fully
// qualified type name, guaranteeing each type is parsed at most once.
type typeCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	cache = &typeCache{values: make(map[string]any)}

	defaultEnvOnce sync.Once
)

// LoadEnv reads the named .env files into the process environment. Unlike
// the implicit default .env, an explicitly named file that cannot be read is
// an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(err)
	}
}

// Load parses environment variables into v based on its `env` field tags.
// The first call per process also attempts to read a default .env file; a
// missing default file is ignored. Each configuration type is parsed at most
// once: later calls for the same type return the cached copy.
func Load[T any](v *T) error {
	defaultEnvOnce.Do(func() {
		// The default .env is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	name := typeName[T]()

	cache.mu.RLock()
	if cached, ok := cache.values[name]; ok {
		*v = cached.(T)
		cache.mu.RUnlock()
		return nil
	}
	cache.mu.RUnlock()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	// Another goroutine may have parsed the type while we waited.
	if cached, ok := cache.values[name]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// Store a copy so later mutations of *v do not leak into the cache.
	cache.values[name] = *v
	return nil
}

// MustLoad works like Load but panics on failure, for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// ResetCache clears all cached configuration types. Intended for tests that
// change the environment between loads.
func ResetCache() {
	cache.mu.Lock()
	cache.values = make(map[string]any)
	cache.mu.Unlock()
}

// typeName returns a stable identifier for the generic type T.
func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// interface types have no concrete reflect.Type
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
