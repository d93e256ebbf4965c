// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute
// constructors, and transparent injection of values stored in
// context.Context.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static default
// attributes, and ContextExtractor callbacks that inject attributes pulled
// from context on every record.
//
// Helper constructors in attr.go keep attribute naming consistent.
// SessionID deliberately truncates ids before logging; logs must never
// contain a value that resolves a live session.
//
// # Usage
//
//	log := logger.New(
//		logger.WithDevelopment("auth-service"),
//		logger.WithContextValue("client_ip", ipContextKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "session regenerated",
//		logger.SessionID(sess.ID),
//		logger.UserID(userID),
//	)
package logger
