package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr           string
	HistoryPath    string
	DBPath         string
	StaticDir      string
	ResolverAddr   string // companion GATT bridge, empty to disable
	ResolveTimeout time.Duration
	EvictInterval  time.Duration
	MockMode       bool
	MockListeners  int
	Debug          bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("BLEMAP_ADDR", ":8080")
	cfg.HistoryPath = getEnv("BLEMAP_HISTORY", getDefaultDataPath("deviceHistory.json"))
	cfg.DBPath = getEnv("BLEMAP_DB", getDefaultDataPath("blemap.db"))
	cfg.StaticDir = getEnv("BLEMAP_STATIC", "./internal/adapters/web/static")
	cfg.ResolverAddr = getEnv("BLEMAP_RESOLVER", "")
	cfg.MockMode = getEnvBool("BLEMAP_MOCK", false)

	resolveTimeoutMs := 2000
	evictIntervalSec := 60

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.HistoryPath, "history", cfg.HistoryPath, "Path to device history JSON file")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Path to dashboard static files")
	flag.StringVar(&cfg.ResolverAddr, "resolver", cfg.ResolverAddr, "GATT bridge address (empty to disable name resolution)")
	flag.IntVar(&resolveTimeoutMs, "resolve-timeout", resolveTimeoutMs, "Name resolution timeout in milliseconds")
	flag.IntVar(&evictIntervalSec, "evict-interval", evictIntervalSec, "Stale eviction interval in seconds")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run in mock mode (simulated listeners)")
	flag.IntVar(&cfg.MockListeners, "mock-listeners", 2, "Number of simulated listeners in mock mode")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	cfg.ResolveTimeout = time.Duration(resolveTimeoutMs) * time.Millisecond
	cfg.EvictInterval = time.Duration(evictIntervalSec) * time.Second

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDataPath returns a path under ~/.blemap, creating the directory
// if needed. Falls back to the current directory.
func getDefaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return name
	}

	dir := filepath.Join(home, ".blemap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .blemap directory, using current dir: %v", err)
		return name
	}
	return filepath.Join(dir, name)
}
