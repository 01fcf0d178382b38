package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":     zapcore.DebugLevel,
		"info":      zapcore.InfoLevel,
		"warn":      zapcore.WarnLevel,
		"WARNING":   zapcore.WarnLevel,
		"error":     zapcore.ErrorLevel,
		"gibberish": zapcore.InfoLevel,
		"":          zapcore.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLevel(input), "level %q", input)
	}
}

func TestGormLoggerTrace(t *testing.T) {
	newObserved := func(opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.DebugLevel)
		return NewGormLogger(zap.New(core), gormlogger.Warn, opts...), logs
	}
	query := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors are logged with the statement", func(t *testing.T) {
		gl, logs := newObserved()
		gl.Trace(context.Background(), time.Now(), query, errors.New("syntax error"))

		entries := logs.FilterMessage("SQL Error").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	})

	t.Run("record-not-found is suppressed", func(t *testing.T) {
		gl, logs := newObserved()
		gl.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("slow queries warn past the threshold", func(t *testing.T) {
		gl, logs := newObserved(WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Millisecond), query, nil)
		assert.Len(t, logs.FilterLevelExact(zapcore.WarnLevel).All(), 1)
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		gl, logs := newObserved()
		silent := gl.LogMode(gormlogger.Silent)
		silent.Error(context.Background(), "boom")
		assert.Zero(t, logs.Len())
	})
}
