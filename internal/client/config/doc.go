// Package config loads runtime configuration for the game client CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a dotenv file
//     (./.env, or the path given with -e/-env).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Environment
//
//	API_BASE_URL     backend base URL
//	API_TIMEOUT      request timeout, Go duration ("10s")
//	SESSION_DB_DSN   SQLite DSN of the primary session store
//	REDIS_URL        redis:// URL of the session mirror (optional)
//	LOG_LEVEL        debug|info|warn|error
//	LOG_BACKEND      slog|zerolog
//
// # JSON schema
//
// request_timeout accepts a duration string or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "request_timeout": "15s",
//	  "database_dsn": "data/session.db",
//	  "redis_url": "redis://localhost:6379/0",
//	  "log_level": "debug",
//	  "log_backend": "zerolog"
//	}
package config
