package config

import (
	"os"
	"strings"

	"github.com/sean-lockwood/crimson-ins-submit/submission"
)

// Config holds the server binary's settings, loaded from the environment.
type Config struct {
	HTTPAddr    string
	Observatory submission.Observatory
	JWTSecret   string
	StagingDir  string
	GelfAddr    string
	Users       map[string]string
}

func Load() *Config {
	return &Config{
		HTTPAddr:    getEnv("CRIMSON_ADDR", ":8080"),
		Observatory: submission.Observatory(getEnv("CRIMSON_OBSERVATORY", string(submission.HST))),
		JWTSecret:   getEnv("CRIMSON_JWT_SECRET", "crimson-dev-secret-change-me"),
		StagingDir:  getEnv("CRIMSON_STAGING_DIR", os.TempDir()),
		GelfAddr:    getEnv("CRIMSON_GELF_ADDR", ""),
		Users:       getEnvUsers("CRIMSON_USERS", map[string]string{"admin": "admin123"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvUsers parses "user:key,user:key" pairs.
func getEnvUsers(key string, fallback map[string]string) map[string]string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	users := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		name, secret, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" {
			continue
		}
		users[name] = secret
	}
	if len(users) == 0 {
		return fallback
	}
	return users
}
