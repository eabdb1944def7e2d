// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - leveled convenience functions (InfoKV, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, so names and
// fields attached by a caller follow the request through the code base.
package logger
