package logsvc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
)

func TestConsoleHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := slog.New(NewConsoleHandler(&buf, slog.LevelInfo)).With("app", "econspark")

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("class created", "class_id", 7)
	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "class created")
	assert.Contains(t, out, "app=econspark")
	assert.Contains(t, out, "class_id=7")
}

func TestRollbarLogger(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	conf := core.NewTestConfig()
	l := NewRollbarLogger(slog.New(NewConsoleHandler(&buf, slog.LevelDebug)), conf)

	l.Warn("join failed", assert.AnError, map[string]interface{}{"code": "ABC123"}, user.User{ID: 3, Username: "bob"})
	out := buf.String()
	assert.Contains(t, out, "WARN:")
	assert.Contains(t, out, "join failed")
	assert.Contains(t, out, "code=ABC123")
	assert.Contains(t, out, "user_id=3")
	assert.Contains(t, out, "error="+assert.AnError.Error())
}
