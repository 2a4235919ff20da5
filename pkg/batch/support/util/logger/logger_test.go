package logger_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"go.uber.org/fx/fxevent"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	defer logger.SetLogLevel("INFO")

	logger.SetLogLevel("warn")
	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	logger.Errorf("shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 2")
	assert.Contains(t, out, "[ERROR] shown 3")

	buf.Reset()
	logger.SetLogLevel("SILENT")
	logger.Errorf("nothing")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	lvl, ok := logger.ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, logger.LevelDebug, lvl)

	lvl, ok = logger.ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, logger.LevelInfo, lvl)
}

func TestFxLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	defer logger.SetLogLevel("INFO")
	logger.SetLogLevel("DEBUG")

	adapter := logger.NewFxLoggerAdapter()
	adapter.LogEvent(&fxevent.Invoked{FunctionName: "github.com/acme/irp/pkg/migration.migrateOnStart.func1", Err: errors.New("no such table")})
	adapter.LogEvent(&fxevent.OnStopExecuted{FunctionName: "github.com/acme/irp/pkg/gorm.glob..func1"})
	adapter.LogEvent(&fxevent.Started{})

	out := buf.String()
	assert.Contains(t, out, "[ERROR] fx: invoke migration.migrateOnStart failed: no such table")
	assert.Contains(t, out, "[DEBUG] fx: OnStop hook gorm.glob.")
	assert.Contains(t, out, "[INFO] IRP workflow core started.")
}
