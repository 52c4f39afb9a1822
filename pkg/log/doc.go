// Package log defines the structured logging interface used across
// logcollector.
//
// Components accept a [Logger] and never import a logging library directly.
// A zerolog-backed implementation and a no-op implementation are provided:
//
//	logger, err := log.NewZerolog(log.Options{Level: "debug", Format: log.FormatJSON})
//	logger.Info("collector started", log.String("cmd", "ping"))
//
//	quiet := log.NewNoopLogger()
//
// Any other library can be plugged in by implementing the four level methods.
package log
