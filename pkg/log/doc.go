// Package log provides the logging abstraction used by segfeed components.
//
// The pipeline logs through the Logger interface so that the library can be
// embedded without forcing a logging dependency on the host. A zerolog
// adapter is provided for the CLI and a no-op logger is the default.
//
// Implement the Logger interface to route pipeline logs into your own
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
