package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"streamcat"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoad_Defaults(t *testing.T) {
	withArgs(t)

	cfg := Load()
	require.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, "session.db", cfg.SessionDBPath)
	require.Equal(t, 30*time.Second, cfg.SessionCheckInterval)
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-a", "https://api.example.com", "-t", "5", "-s", "/tmp/s.db", "-i", "60")

	cfg := Load()
	require.Equal(t, "https://api.example.com", cfg.ServerBaseURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
	require.Equal(t, 60*time.Second, cfg.SessionCheckInterval)
}

func TestLoad_JsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "https://json.example.com",
		"request_timeout": "7s",
		"session_check_interval": "90s"
	}`), 0600))

	withArgs(t, "-c", path)

	cfg := Load()
	require.Equal(t, "https://json.example.com", cfg.ServerBaseURL)
	require.Equal(t, 7*time.Second, cfg.RequestTimeout)
	// absent in JSON: default survives
	require.Equal(t, "session.db", cfg.SessionDBPath)
	require.Equal(t, 90*time.Second, cfg.SessionCheckInterval)
}

func TestLoad_FlagsWinOverJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_base_url": "https://json.example.com"}`), 0600))

	withArgs(t, "-c", path, "-a", "https://flag.example.com")

	cfg := Load()
	require.Equal(t, "https://flag.example.com", cfg.ServerBaseURL)
}
