package logsvc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
)

// RollbarLogger reports to Rollbar (when a token is configured) and mirrors every entry to slog.
type RollbarLogger struct {
	std *slog.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *slog.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std}
}

// NewSlogLogger builds the console slog.Logger used by the apps.
func NewSlogLogger(conf *core.Config) *slog.Logger {
	level := slog.LevelInfo
	if conf.Debug {
		level = slog.LevelDebug
	}
	return slog.New(NewConsoleHandler(os.Stderr, level))
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []slog.Attr) {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	attrs := make([]slog.Attr, 0, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if !usrSet { // only set one User
				rollbar.SetPerson(strconv.Itoa(a.ID), a.Username, "")
				attrs = append(attrs, slog.Int("user_id", a.ID))
				usrSet = true
			}
			continue
		case error:
			attrs = append(attrs, slog.String("error", fmt.Sprintf("%+v", a)))
		case map[string]interface{}:
			for k, v := range a {
				attrs = append(attrs, slog.Any(k, v))
			}
		default:
			attrs = append(attrs, slog.Any("arg"+strconv.Itoa(i), a))
		}
		newArgs = append(newArgs, arg)
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs, attrs
}

func (l RollbarLogger) print(level slog.Level, msg string, attrs []slog.Attr) {
	l.std.LogAttrs(context.Background(), level, msg, attrs...)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, attrs := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	l.print(slog.LevelDebug, msg, attrs)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, attrs := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	l.print(slog.LevelInfo, msg, attrs)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, attrs := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	l.print(slog.LevelWarn, msg, attrs)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, attrs := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	l.print(slog.LevelError, msg, attrs)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, attrs := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	l.print(slog.LevelError, msg, attrs)
	rollbar.Close()
	os.Exit(1)
}
