// Package logging provides structured logging for ets2ha.
//
// This package wraps Go's standard log/slog package. Logs go to stderr by
// default so that stdout carries only the generated configuration and can
// be redirected to a file.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("Using project", "project", name)
//
// Never log MQTT passwords.
package logging
