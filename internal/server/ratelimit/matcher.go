package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the configuration whose pattern matches path and method, or nil.
// The health check is never limited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	segments := splitPath(path)
	for i := range configs {
		config := &configs[i]
		if config.Method == method && matchSegments(splitPath(config.Path), segments) {
			return config
		}
	}
	return nil
}

// Key returns the bucket key for a matched endpoint, so that every session
// shares one bucket per route rather than one per session ID.
func (c *EndpointConfig) Key(path string) string {
	if c.Path == "" {
		return c.Method + " " + path
	}
	return c.Method + " " + c.Path
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != segments[i] {
			return false
		}
	}
	return true
}
