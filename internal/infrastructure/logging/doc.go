// Package logging builds the shell's zap loggers.
//
// Production loggers write JSON with millisecond durations; development
// loggers write colored console output. Every logger is named "shell" and
// components add their own fields (view_id, session_id, request_id).
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Development: true})
//	logger.Info("Session opened", zap.String("session_id", sid))
package logging
