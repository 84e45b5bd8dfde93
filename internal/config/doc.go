// Package config loads modedeck's settings from a TOML file.
//
// The file lives at ~/.config/modedeck/config.toml unless a path is given.
// A missing file is not an error; every setting has a default:
//
//	api_bind     = "127.0.0.1:8081"   # proxy backend API (host:port or URL)
//	poll_seconds = 2                  # snapshot poll interval
//	queue_size   = 64                 # outbound mutation queue capacity
//	log_file     = "~/.local/state/modedeck/modedeck.log"
//	log_level    = "info"             # debug, info, warn, error
//	log_format   = "text"             # text or json
//
// Blank strings and non-positive numbers fall back to the defaults. A leading
// "~" is expanded to the user's home directory and paths are made absolute.
// Invalid TOML and unknown log levels or formats are reported as errors.
package config
