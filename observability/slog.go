package observability

import "log/slog"

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger adapts a slog logger to Logger.
// A nil logger yields slog.Default().
//
//nolint:ireturn // Adapter is consumed through the Logger interface
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, toSlogArgs(fields)...)
}

func (l *slogLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, toSlogArgs(fields)...)
}

func (l *slogLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, toSlogArgs(fields)...)
}

func (l *slogLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, toSlogArgs(fields)...)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{logger: l.logger.With(toSlogArgs(fields)...)}
}

func toSlogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
