// Package logging builds the application's zap logger and exposes the small
// key/value Logger interface the rest of the framework logs through.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Logger is the structured logging interface used across the framework.
// Arguments after msg are alternating keys and values:
//
//	logger.Info("Server started", "addr", addr)
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	sugar  *zap.SugaredLogger
	closer func() error
}

// NewZap wraps an existing zap logger.
func NewZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: z.Sugar()}
}

func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Zap returns the underlying zap logger.
func (l *ZapLogger) Zap() *zap.Logger { return l.sugar.Desugar() }

// Close flushes buffered entries and closes any log file.
func (l *ZapLogger) Close() error {
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer()
	}
	return nil
}

// Nop returns a logger that discards everything.
func Nop() *ZapLogger {
	return NewZap(zap.NewNop())
}

// Swappable forwards to a logger that can be replaced while in use. The
// boot sequence starts with a console logger and swaps in the configured
// one once properties are known.
type Swappable struct {
	current atomic.Pointer[holder]
}

type holder struct{ Logger }

// NewSwappable starts out forwarding to initial.
func NewSwappable(initial Logger) *Swappable {
	s := &Swappable{}
	s.Swap(initial)
	return s
}

// Swap installs next and returns the previous logger.
func (s *Swappable) Swap(next Logger) Logger {
	if next == nil {
		next = Nop()
	}
	prev := s.current.Swap(&holder{next})
	if prev == nil {
		return nil
	}
	return prev.Logger
}

// Current returns the logger currently in use.
func (s *Swappable) Current() Logger { return s.current.Load().Logger }

func (s *Swappable) Info(msg string, args ...any)  { s.Current().Info(msg, args...) }
func (s *Swappable) Error(msg string, args ...any) { s.Current().Error(msg, args...) }
func (s *Swappable) Warn(msg string, args ...any)  { s.Current().Warn(msg, args...) }
func (s *Swappable) Debug(msg string, args ...any) { s.Current().Debug(msg, args...) }
