package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM's query tracing through the application's zap
// logger, so SQL lines carry the same request correlation as everything
// else. Lookups that legitimately miss (record not found) are muted by
// default since repositories translate them into domain errors.
type GormLogger struct {
	log          *zap.Logger
	level        gormlogger.LogLevel
	slowAfter    time.Duration
	muteNotFound bool
}

// GormLoggerOption adjusts a GormLogger at construction time
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the duration after which a query is reported
// as slow. Zero disables slow-query reporting.
func WithSlowThreshold(after time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowAfter = after
	}
}

// WithIgnoreRecordNotFoundError controls whether missed lookups are logged
// as errors
func WithIgnoreRecordNotFoundError(mute bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.muteNotFound = mute
	}
}

// NewGormLogger builds a GORM logger on top of the given zap logger
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		log:          base.Named("gorm"),
		level:        level,
		slowAfter:    200 * time.Millisecond,
		muteNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy of the logger at the requested level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace reports one executed statement: failed queries at error level, slow
// ones at warn, the rest at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	took := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("took", took),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.muteNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.log.Error("query failed", append(fields, zap.Error(err))...)

	case l.slowAfter != 0 && took > l.slowAfter && l.level >= gormlogger.Warn:
		l.log.Warn("slow query", append(fields, zap.Duration("threshold", l.slowAfter))...)

	case l.level >= gormlogger.Info:
		l.log.Debug("query", fields...)
	}
}

// MapGormLogLevel translates the application log level into GORM's scale
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
