package tracker

import (
	"go.uber.org/zap"
)

// zapLogger adapts a zap.SugaredLogger to the tracker Logger contract.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a zap logger for use as the tracker's Logger.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{sugar: logger.Sugar()}
}

// NewDevelopmentLogger builds a development-mode zap logger, primarily for
// tests and the demo host.
func NewDevelopmentLogger() Logger {
	logger, _ := zap.NewDevelopment()
	return NewZapLogger(logger)
}

func (l *zapLogger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *zapLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *zapLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *zapLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *zapLogger) WithField(key string, v interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(key, v)}
}
