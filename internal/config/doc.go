// Package config handles configuration loading for liftlog.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${LIFTLOG_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "1h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/liftlog/liftlog.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${LIFTLOG_JWT_SECRET}"  # empty = random per-process key
//	  token_ttl: "1h"                      # default 1h
//	  policy_path: "/etc/liftlog/policy.toml"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/liftlog/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
