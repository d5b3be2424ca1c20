package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfigDir points the config lookup at dir for the duration of the test.
func useConfigDir(t *testing.T, dir string) string {
	t.Helper()

	old := configDirFunc
	configDirFunc = func() (string, error) {
		return dir, nil
	}
	t.Cleanup(func() { configDirFunc = old })
	return filepath.Join(dir, configFileName)
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	useConfigDir(t, t.TempDir())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_ValidFile(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://review.internal:9000"}`), 0600))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "http://review.internal:9000", config.APIURL)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))

	config, err := LoadGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveGlobalConfig_CreatesDirectoryWithPrivateFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "reposcope")
	configPath := useConfigDir(t, configDir)

	err := SaveGlobalConfig(&GlobalConfig{APIURL: "http://localhost:8080"})
	require.NoError(t, err)

	assert.DirExists(t, configDir)
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var loaded GlobalConfig
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "http://localhost:8080", loaded.APIURL)
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0600))

	require.NoError(t, DeleteGlobalConfig())
	assert.NoFileExists(t, configPath)

	// Deleting again is not an error.
	require.NoError(t, DeleteGlobalConfig())
}

func TestIsValidAPIURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"http://localhost:8080", true},
		{"https://reviews.example.com", true},
		{"ftp://example.com", false},
		{"localhost:8080", false},
		{"http://", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAPIURL(tt.raw))
		})
	}
}

func TestResolveAPIURL(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:8080")
		useConfigDir(t, t.TempDir())

		source, url, err := ResolveAPIURL("http://flag:8080")
		require.NoError(t, err)
		assert.Equal(t, SourceFlag, source)
		assert.Equal(t, "http://flag:8080", url)
	})

	t.Run("env before global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:8080")
		configPath := useConfigDir(t, t.TempDir())
		require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://global:8080"}`), 0600))

		source, url, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, SourceEnv, source)
		assert.Equal(t, "http://env:8080", url)
	})

	t.Run("global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		configPath := useConfigDir(t, t.TempDir())
		require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://global:8080"}`), 0600))

		source, url, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, SourceGlobalConfig, source)
		assert.Equal(t, "http://global:8080", url)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		useConfigDir(t, t.TempDir())

		source, url, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, source)
		assert.Equal(t, defaultAPIURL, url)
	})

	t.Run("broken global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		configPath := useConfigDir(t, t.TempDir())
		require.NoError(t, os.WriteFile(configPath, []byte("nope"), 0600))

		_, _, err := ResolveAPIURL("")
		assert.Error(t, err)
	})
}

func TestSaveGlobalConfig_LeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	useConfigDir(t, dir)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://a:1"}))
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://b:2"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, configFileName, entries[0].Name())

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://b:2", cfg.APIURL)
}
