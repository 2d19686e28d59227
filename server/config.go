package server

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the process's environment-derived settings. Non-present optional
// variables fall back to the documented defaults.
type Config struct {
	APIKey string
	A      int
	B      int
	Port   int
}

const (
	defaultA    = 2
	defaultB    = 3
	defaultPort = 3000
)

// LoadConfig reads LATTICEDB_API_KEY, LATTICEDB_A, LATTICEDB_B and LATTICEDB_PORT
// from the environment and validates them. Invalid or missing required
// configuration is reported as an error, not a panic, so main can exit with a
// diagnostic before the listener opens.
func LoadConfig() (Config, error) {
	apiKey := os.Getenv("LATTICEDB_API_KEY")
	if apiKey == "" {
		return Config{}, fmt.Errorf("server: LATTICEDB_API_KEY is required")
	}

	a, err := envInt("LATTICEDB_A", defaultA)
	if err != nil {
		return Config{}, err
	}
	if a < 2 {
		return Config{}, fmt.Errorf("server: LATTICEDB_A must be >= 2, got %d", a)
	}

	b, err := envInt("LATTICEDB_B", defaultB)
	if err != nil {
		return Config{}, err
	}
	if b < 2*a-1 {
		return Config{}, fmt.Errorf("server: LATTICEDB_B must be >= 2*a-1 (%d), got %d", 2*a-1, b)
	}

	port, err := envInt("LATTICEDB_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	if port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("server: LATTICEDB_PORT must be in [0, 65535], got %d", port)
	}

	return Config{APIKey: apiKey, A: a, B: b, Port: port}, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("server: %s must be an integer, got %q", name, raw)
	}
	return v, nil
}
