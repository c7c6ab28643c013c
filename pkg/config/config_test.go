package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExpandsEnvAndValidates(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "virtualta")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 8000\n")

	var s sample
	require.NoError(t, Load(path, &s))
	assert.Equal(t, "virtualta", s.Name)
	assert.Equal(t, 8000, s.Port)
	assert.True(t, s.valid)
}

func TestLoad_Errors(t *testing.T) {
	var s sample
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &s))
	assert.Error(t, Load(writeFile(t, "port: [1"), &s))
	assert.ErrorContains(t, Load(writeFile(t, "port: 0\n"), &s), "validation failed")
}

func TestLoadOptional(t *testing.T) {
	s := sample{Port: 8000}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, s.valid)

	found, err = LoadOptional(writeFile(t, "port: 9000\n"), &s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 9000, s.Port)

	_, err = LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &sample{})
	assert.Error(t, err)
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeFile(t, "port: 7000\n")
	var s sample
	require.NoError(t, LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &s))
	assert.Equal(t, 7000, s.Port)

	assert.Error(t, LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &s))
}
