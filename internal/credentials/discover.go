package credentials

import (
	"os"
	"strings"
)

// KeySource records where the active key came from.
type KeySource string

const (
	SourceNone     KeySource = "none"
	SourceEnv      KeySource = "env"
	SourceSettings KeySource = "settings"
	SourceRuntime  KeySource = "runtime"
)

// LookupFunc reports the environment-level default key, if any.
type LookupFunc func() (string, bool)

// EnvLookup returns a LookupFunc reading the named process environment variable.
func EnvLookup(name string) LookupFunc {
	return func() (string, bool) {
		return os.LookupEnv(name)
	}
}

// DiscoverKey applies the startup precedence: environment first, then the
// persisted settings store. Blank values count as absent. A store read error
// is treated as absent; callers that need to surface it should wrap the store.
func DiscoverKey(env LookupFunc, store SettingsStore) (string, KeySource, bool) {
	if env != nil {
		if key, ok := env(); ok {
			if key = strings.TrimSpace(key); key != "" {
				return key, SourceEnv, true
			}
		}
	}
	if store != nil {
		key, ok, err := store.ReadKey()
		if err == nil && ok {
			if key = strings.TrimSpace(key); key != "" {
				return key, SourceSettings, true
			}
		}
	}
	return "", SourceNone, false
}
