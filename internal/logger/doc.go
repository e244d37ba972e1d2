// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every stage of a release run receives a context and logs through it, so
// platform and asset fields follow the message without being repeated.
package logger
