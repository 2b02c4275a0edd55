// Package config loads runtime configuration for the StudyShare CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables with the STUDYSHARE_ prefix, after loading a
//     dotenv file (-e/-env-file, or ./.env when present).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     backend base URL
//	-t duration   request timeout
//	-d string     token database path
//	-o string     download directory
//	-l string     log level
//	-f string     log format (text or json)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "request_timeout": "10s",
//	  "database_path": "studyshare.db",
//	  "download_dir": "downloads",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Environment variables use the field names in upper snake case, e.g.
// STUDYSHARE_API_BASE_URL or STUDYSHARE_REQUEST_TIMEOUT=5s.
package config
