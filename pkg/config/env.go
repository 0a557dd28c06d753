package config

import (
	"os"
	"strconv"
	"time"
)

// Getenv returns the value of the environment variable, or fallback when
// unset or empty.
func Getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetenvInt returns the integer value of the environment variable, or
// fallback when unset, empty, or not a valid integer.
func GetenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// GetenvBool returns the boolean value of the environment variable.
// Accepts the values strconv.ParseBool accepts; anything else yields
// fallback.
func GetenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

// GetenvDuration returns the duration value of the environment variable
// (Go duration syntax, e.g. "30s"), or fallback when unset or invalid.
func GetenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
