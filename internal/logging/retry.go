package logging

import (
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// retryLogger adapts zap to retryablehttp's leveled logger.
type retryLogger struct {
	s *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = (*retryLogger)(nil)

// ForRetryClient returns a logger for retryablehttp.Client.Logger. Request
// chatter goes to debug level.
func ForRetryClient(l *zap.Logger) retryablehttp.LeveledLogger {
	return &retryLogger{s: OrNop(l).Named("http").Sugar()}
}

func (r *retryLogger) Error(msg string, kv ...interface{}) { r.s.Errorw(msg, kv...) }
func (r *retryLogger) Info(msg string, kv ...interface{})  { r.s.Debugw(msg, kv...) }
func (r *retryLogger) Debug(msg string, kv ...interface{}) { r.s.Debugw(msg, kv...) }
func (r *retryLogger) Warn(msg string, kv ...interface{})  { r.s.Warnw(msg, kv...) }
