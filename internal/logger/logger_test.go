package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitParsesLevelAndFallsBack(t *testing.T) {
	Init("debug", "json")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	Init("chatty", "json")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestJSONOutputCarriesFields(t *testing.T) {
	Init("info", "json")
	var buf bytes.Buffer
	Log.SetOutput(&buf)

	WithField("stage", "risk").Info("stage complete")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "risk", line["stage"])
	assert.Equal(t, "stage complete", line["msg"])
}
