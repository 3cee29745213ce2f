package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/adminctl/internal/config"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminctl.log")

	log, closer, err := New(config.LogOptions{Level: "debug", File: path, Format: "json"}, nil)
	require.NoError(t, err)
	log.WithField("resource", "role").Debug("fetched")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resource":"role"`)
}

func TestNew_FallbackWriter(t *testing.T) {
	var buf bytes.Buffer

	log, closer, err := New(config.LogOptions{Level: "info", File: "-", Format: "text"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(config.LogOptions{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := Discard()

	assert.Equal(t, io.Discard, log.Out)
	log.Info("dropped")
}
