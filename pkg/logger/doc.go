// Package logger builds configured *slog.Logger instances.
//
// New reads LOG_LEVEL and LOG_FORMAT from the environment (info/json by
// default) and accepts functional options for overrides. The attr helpers
// keep structured log keys consistent across the module; none of them should
// ever carry secret material.
package logger
