// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package commons

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface shared by every api and pkg component.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Sync() error
}

type zapLogger struct {
	*zap.SugaredLogger
}

// NewLogger builds a zap-backed Logger. In debug mode it writes a console
// encoding to stdout; otherwise JSON to a rotated file plus stdout.
func NewLogger(serviceName, level string, debug bool) Logger {
	zapLevel := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		zapLevel = parsed
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var core zapcore.Core
	if debug {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			zapLevel,
		)
	} else {
		rotated := zapcore.AddSync(&lumberjack.Logger{
			Filename:   "logs/" + serviceName + ".log",
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
		core = zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), rotated, zapLevel),
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zapLevel),
		)
	}

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.String("service", serviceName))
	return &zapLogger{logger.Sugar()}
}

// NewNopLogger returns a Logger that discards everything. Used in tests.
func NewNopLogger() Logger {
	return &zapLogger{zap.NewNop().Sugar()}
}
