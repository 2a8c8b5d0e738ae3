package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is resolved once at startup and passed into components explicitly;
// nothing in the core reads the environment on its own.
type Config struct {
	Addr   string // status API bind address
	LogDir string // health session logs + rotated ops log

	HealthURL      string        // target probed by the monitor
	ExpectedStatus int           // probe is healthy iff status matches
	Timeout        time.Duration // per-probe HTTP timeout
	CheckInterval  time.Duration // gap between probes

	DeployAPIBase string            // hosting API, empty disables deploy calls
	DeployApp     string            // app identifier at the hosting API
	DeployToken   string            // bearer token
	EnvVars       map[string]string // pushed to the app before triggering

	RetryAttempts int           // deploy API attempts (health probe has its own fixed policy)
	RetryBackoff  time.Duration // wait between deploy API attempts

	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		Addr:   addr,
		LogDir: logDir,

		HealthURL:      os.Getenv("HEALTH_URL"),
		ExpectedStatus: envInt("EXPECTED_STATUS", 200),
		Timeout:        envMS("HTTP_TIMEOUT_MS", 5000),
		CheckInterval:  envMS("CHECK_INTERVAL_MS", 30000),

		DeployAPIBase: strings.TrimRight(os.Getenv("DEPLOY_API_BASE"), "/"),
		DeployApp:     os.Getenv("DEPLOY_APP"),
		DeployToken:   os.Getenv("DEPLOY_TOKEN"),
		EnvVars:       envMap("DEPLOY_ENV_VARS"),

		RetryAttempts: envInt("RETRY_ATTEMPTS", 2),
		RetryBackoff:  envMS("RETRY_BACKOFF_MS", 300),

		PublicAPIKeys: envList("PUBLIC_API_KEYS"),
		AdminAPIKeys:  envList("ADMIN_API_KEYS"),
		PublicRPM:     envInt("PUBLIC_RPM", 120),
		PublicBurst:   envInt("PUBLIC_BURST", 60),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envMS(key string, defMS int) time.Duration {
	return time.Duration(envInt(key, defMS)) * time.Millisecond
}

func envList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMap parses comma-separated K=V pairs; entries without '=' are skipped.
func envMap(key string) map[string]string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		out[k] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
