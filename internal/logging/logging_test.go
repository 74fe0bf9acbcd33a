package logging_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dfir-toolkit/ntfsmft/internal/logging"
)

func TestVerbosityLevelMapping(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, logging.Verbosity(0).Level())
	assert.Equal(t, logrus.InfoLevel, logging.Verbosity(1).Level())
	assert.Equal(t, logrus.DebugLevel, logging.Verbosity(2).Level())
	assert.Equal(t, logrus.TraceLevel, logging.Verbosity(3).Level())
	assert.Equal(t, logrus.TraceLevel, logging.Verbosity(7).Level())
}

func TestNewWritesToGivenOutput(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Options{Verbosity: 1, Output: &buf})

	log.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNewJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Options{Verbosity: 1, JSON: true, Output: &buf})

	log.Info("structured")
	assert.Contains(t, buf.String(), `"msg":"structured"`)
}

func TestDiscardSuppressesOutput(t *testing.T) {
	log := logging.Discard()
	assert.NotPanics(t, func() { log.Info("ignored") })
}
