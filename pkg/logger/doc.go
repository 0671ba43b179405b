// Package logger provides structured logging for pixivcrawler.
//
// It wraps zerolog behind the Logger interface so components can take a
// logger as a dependency and tests can substitute NewTestLogger or
// NewNopLogger.
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("tag", tag).Info("Fetch started")
//	log.WarnWithFields("retrying request", map[string]interface{}{
//	    "attempt": 2,
//	    "url":     url,
//	})
//
// Console output goes to stderr; when logging.file is set the same events
// are also appended to that file as JSON.
package logger
