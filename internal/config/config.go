package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration values.
type Config struct {
	Secret         string
	DatabaseDSN    string
	HTTPPort       string
	APIBaseURL     string
	RequestTimeout time.Duration
	SoftFailReads  bool
	AllowedOrigins []string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "medeasy-admin.db"
	}

	apiBase := os.Getenv("API_BASE_URL")
	if apiBase == "" {
		apiBase = "http://localhost:5000"
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			log.Printf("invalid REQUEST_TIMEOUT value %q, defaulting to %s", raw, timeout)
		} else {
			timeout = parsed
		}
	}

	softFail := false
	if raw := os.Getenv("SOFT_FAIL_READS"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			log.Printf("invalid SOFT_FAIL_READS value %q, defaulting to false", raw)
		}
		softFail = parsed
	}

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Secret:         secret,
		DatabaseDSN:    dsn,
		HTTPPort:       port,
		APIBaseURL:     apiBase,
		RequestTimeout: timeout,
		SoftFailReads:  softFail,
		AllowedOrigins: origins,
	}
}
