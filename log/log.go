/*
NAME
  log.go

DESCRIPTION
  log.go defines the Logger interface threaded through the container
  writer constructors and the task runtime (SetLevel + Log), backed by
  go.uber.org/zap instead of a bespoke sink.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package log provides the logging sink passed into isxcore
// constructors, so callers can redirect diagnostics without isxcore
// owning a singleton logger.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level mirrors the zapcore levels isxcore components log at.
type Level = int8

// Levels, ordered least to most severe.
const (
	LevelDebug   Level = -1
	LevelInfo    Level = 0
	LevelWarning Level = 1
	LevelError   Level = 2
)

// Logger is the sink every isxcore component that can emit
// diagnostics accepts. SetLevel adjusts the minimum level that Log
// will emit.
type Logger interface {
	SetLevel(level int8)
	Log(level int8, message string, params ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// New returns a Logger backed by a console zap encoder at stderr.
func New() Logger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)
	return &zapLogger{sugar: zap.New(core).Sugar(), level: level}
}

// NewFileSink returns a Logger that writes to a lumberjack-rotated
// file at path, rotating at maxSizeMB megabytes and keeping
// maxBackups old files.
func NewFileSink(path string, maxSizeMB, maxBackups int) Logger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(writer),
		level,
	)
	return &zapLogger{sugar: zap.New(core).Sugar(), level: level}
}

func (l *zapLogger) SetLevel(level int8) {
	l.level.SetLevel(zapcore.Level(level))
}

func (l *zapLogger) Log(level int8, message string, params ...interface{}) {
	switch zapcore.Level(level) {
	case zapcore.DebugLevel:
		l.sugar.Debugw(message, params...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(message, params...)
	case zapcore.ErrorLevel:
		l.sugar.Errorw(message, params...)
	default:
		l.sugar.Infow(message, params...)
	}
}

// nop is a Logger that discards everything; the zero value other
// constructors fall back to when the caller passes none.
type nop struct{}

func (nop) SetLevel(int8)                           {}
func (nop) Log(int8, string, ...interface{})        {}

// NewNop returns a Logger that discards all output.
func NewNop() Logger { return nop{} }
