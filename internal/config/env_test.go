package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInit_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_BASE", "http://127.0.0.1:5000/")

	require.NoError(t, Init())

	c := Get()
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "http://127.0.0.1:5000", c.APIBase)
	require.Equal(t, "http://127.0.0.1:5000/api", GetAPIURL())
	require.Equal(t, 15*time.Second, c.HTTPTimeout)
	require.Equal(t, "MATIC", c.NativeCurrency)
	require.Equal(t, "https://gateway.pinata.cloud/", c.IPFSGateway)
	require.Equal(t, 10, c.LoginRatePerMinute)
	require.Empty(t, c.RedisURL)
}

func TestInit_RejectsNonPositiveLimits(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_BASE", "http://127.0.0.1:5000")
	t.Setenv("LOGIN_BURST", "0")

	require.Error(t, Init())
}

func TestInit_MissingAPIBase(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_BASE", "")

	require.Error(t, Init())
}

func TestInit_RejectsNonHTTPBase(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_BASE", "ftp://example.com")

	require.Error(t, Init())
}

func TestInit_EnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// unset so the file value is picked up; godotenv never overrides existing vars
	t.Setenv("API_BASE", "")
	os.Unsetenv("API_BASE")
	t.Setenv("IPFS_GATEWAY", "https://ipfs.io")

	envFile := filepath.Join(dir, "dashboard.env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE=https://wallet.example.com\nIPFS_GATEWAY=https://ignored.example.com/\n"), 0o600))

	require.NoError(t, Init(envFile))
	require.Equal(t, "https://wallet.example.com", Get().APIBase)
	require.Equal(t, "https://ipfs.io/", Get().IPFSGateway)
}

func TestGetTokenFile_Override(t *testing.T) {
	Set(&Config{TokenFile: "/tmp/walletdash-token"})

	p, err := GetTokenFile()
	require.NoError(t, err)
	require.Equal(t, "/tmp/walletdash-token", p)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
