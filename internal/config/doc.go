// Package config loads cinefind's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/cinefind/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// Finally the TMDB_API_TOKEN environment variable, when set, replaces api_token.
// The token is never hardcoded.
//
// # TOML Format
//
//	api_base_url = "https://api.themoviedb.org/3"
//	api_token = "eyJhbGciOi..."
//	request_timeout_seconds = 10
//	requests_per_second = 20
//	debounce_ms = 500
//	log_dir = "~/.local/share/cinefind/logs"
//	trending_refresh_seconds = 30
//	trending_limit = 5
//
//	[counter]
//	backend = "sqlite"            # sqlite, http or none
//	db_path = "~/.local/share/cinefind/searches.db"
//	url = ""                      # http backend collection URL
//	project = ""
//	api_key = ""
//
// Tilde expansion is performed for log_dir and db_path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
