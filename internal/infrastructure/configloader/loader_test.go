package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultMainnetRPCURL, cfg.Networks.MainnetRPCURL)
	assert.Equal(t, DefaultBuildnetRPCURL, cfg.Networks.BuildnetRPCURL)
	assert.EqualValues(t, 10000, cfg.RpcClient.CallTimeoutMs)
	assert.EqualValues(t, 10000, cfg.Goals.RequestTimeoutMillis)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Zero(t, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
networks:
  mainnetRPCURL: "http://file.example/api/v2"
rpcClient:
  callTimeoutMs: 2500
  rateLimit: 5
courseStore:
  cacheTTLMinutes: 3
`)
	t.Setenv("MASSA_MAINNET_RPC_URL", "http://env.example/api/v2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://env.example/api/v2", cfg.Networks.MainnetRPCURL)
	assert.Equal(t, DefaultBuildnetRPCURL, cfg.Networks.BuildnetRPCURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.EqualValues(t, 2500, cfg.RpcClient.CallTimeoutMs)
	assert.Equal(t, 1, cfg.RpcClient.BurstLimit)
	assert.Equal(t, 3, cfg.CourseStore.CacheTTLMinutes)
}

func TestLoadRejectsBadURL(t *testing.T) {
	path := writeConfig(t, "networks:\n  buildnetRPCURL: \"not a url\"\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "networks.buildnetRPCURL")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, PathFromEnv())
	t.Setenv("CONFIG_PATH", "/etc/gateway.yaml")
	assert.Equal(t, "/etc/gateway.yaml", PathFromEnv())
}
