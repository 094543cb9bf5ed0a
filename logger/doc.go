// Package logger provides structured logging for datafeed using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The prefetch worker logs per-batch read and
// transform timings at debug level and skipped examples at warn level.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("prefetch")
//	log.Debug("batch filled", logger.Fields(logger.FieldBatch, 3, logger.FieldFilled, 64))
package logger
