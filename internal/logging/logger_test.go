package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("prod", "debug", &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("reason", "SIGNATURE_MISMATCH").Warn("webhook rejected")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "webhook rejected", line["msg"])
	assert.Equal(t, "SIGNATURE_MISMATCH", line["reason"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l := New("dev", "loud", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
