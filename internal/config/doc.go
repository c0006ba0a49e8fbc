// Package config handles configuration loading for remind-gateway.
//
// # Configuration File
//
// Files ending in .toml are parsed as TOML; anything else is YAML. Default
// locations (in order):
//
//  1. Path from REMIND_CONFIG environment variable
//  2. ~/.config/remind/gateway.yaml
//
// Without a file the gateway runs from defaults plus environment variables
// (see FromEnv).
//
// # Environment Variables
//
// Values can reference environment variables:
//
//	auth:
//	  token: "${REMIND_TOKEN}"
//
// Unset variables expand to the empty string. After parsing, these variables
// override the file when set:
//
//	REMIND_TOKEN      auth.token
//	REMIND_HTTP_ADDR  server.http_addr
//	EMAIL_ADDRESS     mail.address
//	EMAIL_PASSWORD    mail.password
//
// # Example
//
//	server:
//	  http_addr: "0.0.0.0:8085"
//	  tool_timeout: "30s"
//
//	auth:
//	  token: "${REMIND_TOKEN}"
//
//	mail:
//	  address: "${EMAIL_ADDRESS}"
//	  password: "${EMAIL_PASSWORD}"
//	  host: "smtp.gmail.com"
//	  port: 465
//	  timeout: "30s"
//
//	reminders:
//	  log_path: "reminder_log.txt"
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text or json
//
// # Validation
//
// auth.token is required. Mail credentials are optional; without them
// send_email reports that credentials are missing and everything else works.
package config
