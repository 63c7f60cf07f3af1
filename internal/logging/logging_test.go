package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	log, err := newLogger(&buf, "debug", true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("action", "item.create").Info("audit")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "item.create", line["action"])
	assert.Equal(t, "audit", line["msg"])
}

func TestNewLogger_Silent(t *testing.T) {
	var buf bytes.Buffer

	log, err := newLogger(&buf, Silent, false)
	require.NoError(t, err)

	log.Error("should not appear")
	assert.Zero(t, buf.Len())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "loud", false)
	assert.Error(t, err)
}

func TestNew_ProductionForcesJSON(t *testing.T) {
	log, err := New(&config.Config{Env: config.EnvProduction, LogLevel: "info", LogFormat: "text"})
	require.NoError(t, err)

	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}
