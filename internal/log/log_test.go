package log_test

import (
	"bytes"
	"testing"

	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
	"github.com/stretchr/testify/assert"
)

// TestLogLevels tests that messages below the minimum level are suppressed
func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(nil)

	log.SetLevel(log.LevelWarn)
	defer log.SetLevel(log.LevelInfo)

	log.Debug("debug message")
	log.Info("info message")
	assert.Empty(t, buf.String(), "debug and info should be suppressed at warn level")

	log.Warn("warn message")
	assert.Contains(t, buf.String(), "[AWDTY] warn message")

	log.Error("error %d", 42)
	assert.Contains(t, buf.String(), "[AWDTY] error 42")
}

// TestGetLevel tests that the configured level is reported back
func TestGetLevel(t *testing.T) {
	log.SetLevel(log.LevelDebug)
	defer log.SetLevel(log.LevelInfo)
	assert.Equal(t, log.LevelDebug, log.GetLevel())
}
