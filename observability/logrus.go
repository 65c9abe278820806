package observability

import "github.com/sirupsen/logrus"

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts a logrus logger to Logger.
// A nil logger yields logrus.StandardLogger().
//
//nolint:ireturn // Adapter is consumed through the Logger interface
func NewLogrusLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logrusLogger{entry: logrus.NewEntry(logger)}
}

func (l *logrusLogger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *logrusLogger) With(fields ...Field) Logger {
	return &logrusLogger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
