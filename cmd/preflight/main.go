// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	healthURL := strings.TrimSpace(os.Getenv("HEALTH_URL"))
	apiBase := strings.TrimSpace(os.Getenv("DEPLOY_API_BASE"))
	token := strings.TrimSpace(os.Getenv("DEPLOY_TOKEN"))
	app := strings.TrimSpace(os.Getenv("DEPLOY_APP"))
	status := strings.TrimSpace(os.Getenv("EXPECTED_STATUS"))
	adminKeys := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))

	if healthURL == "" {
		fail("HEALTH_URL is empty (nothing to monitor).")
	}
	if u, err := url.ParseRequestURI(healthURL); err != nil || u.Scheme == "" || u.Host == "" {
		fail("HEALTH_URL is not a valid absolute URL: " + healthURL)
	}
	ok("HEALTH_URL=" + healthURL)

	if apiBase == "" {
		warn("DEPLOY_API_BASE empty — running as a plain health monitor, no deploys will be triggered.")
	} else {
		if _, err := url.ParseRequestURI(apiBase); err != nil {
			fail("DEPLOY_API_BASE is not a valid URL: " + apiBase)
		}
		if token == "" {
			fail("DEPLOY_TOKEN is empty but DEPLOY_API_BASE is set (deploy calls will 401).")
		}
		if app == "" {
			fail("DEPLOY_APP is empty but DEPLOY_API_BASE is set (no app to deploy).")
		}
		ok("DEPLOY_API_BASE=" + apiBase + " app=" + app)
	}

	if status != "" {
		if n, err := strconv.Atoi(status); err != nil || n < 100 || n > 599 {
			fail("EXPECTED_STATUS must be a valid HTTP status code, got " + status)
		}
		ok("EXPECTED_STATUS=" + status)
	}

	if adminKeys == "" {
		warn("ADMIN_API_KEYS empty — POST /api/deployments is open to anyone who can reach it.")
	} else if strings.Contains(adminKeys, " ") {
		warn("ADMIN_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
	}

	ok("preflight passed")
}
