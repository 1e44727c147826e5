package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	internal "github.com/ZanzyTHEbar/hybridchat/hchat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()

	// Run from an empty directory so no stray config.yaml is picked up
	err = os.Chdir(suite.tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(suite.T(), internal.DefaultDatabaseDSN, cfg.Database.DSN)
	assert.Equal(suite.T(), "libsql", cfg.Database.Driver)
	assert.Equal(suite.T(), "memory", cfg.Session.Driver)
	assert.Equal(suite.T(), 8, cfg.Session.MaxTurns)
	assert.Equal(suite.T(), 8, cfg.Session.KeepTurns)
	assert.Equal(suite.T(), 24*time.Hour, cfg.Session.TTL)
	assert.InDelta(suite.T(), 0.6, cfg.Learned.Threshold, 1e-9)
	assert.False(suite.T(), cfg.Learned.DegradeOnError)
	assert.Equal(suite.T(), 20, cfg.Classifier.MaxSeqLen)
	assert.Equal(suite.T(), DefaultEscalationKeywords, cfg.Escalation.Keywords)
	assert.Equal(suite.T(), DefaultEscalationResponse, cfg.Escalation.Response)
	assert.Equal(suite.T(), 10*time.Second, cfg.Fallback.Timeout)
	assert.Empty(suite.T(), cfg.Fallback.Token)
	assert.Len(suite.T(), cfg.Canned.Responses, 6)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
server:
  addr: "127.0.0.1:9000"
session:
  driver: "redis"
  keep_turns: 2
  redis_addr: "redis:6379"
learned:
  threshold: 0.75
fallback:
  enabled: false
  timeout: "2s"
canned:
  responses: ["only one"]
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(suite.T(), "redis", cfg.Session.Driver)
	assert.Equal(suite.T(), 8, cfg.Session.MaxTurns)
	assert.Equal(suite.T(), 2, cfg.Session.KeepTurns)
	assert.Equal(suite.T(), "redis:6379", cfg.Session.RedisAddr)
	assert.InDelta(suite.T(), 0.75, cfg.Learned.Threshold, 1e-9)
	assert.False(suite.T(), cfg.Fallback.Enabled)
	assert.Equal(suite.T(), 2*time.Second, cfg.Fallback.Timeout)
	assert.Equal(suite.T(), []string{"only one"}, cfg.Canned.Responses)
}

func (suite *ConfigTestSuite) TestLoadConfigSearchPath() {
	err := os.WriteFile(filepath.Join(suite.tempDir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestFallbackTokenFromEnv() {
	suite.T().Setenv("HCHAT_FALLBACK_TOKEN", "from-env")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "from-env", cfg.Fallback.Token)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	// An explicit path that does not exist is an error
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
session:
  driver: "memory"
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Server.Addr, AppConfig.Server.Addr)
}

// BenchmarkLoadConfig benchmarks config loading performance
func BenchmarkLoadConfig(b *testing.B) {
	for b.Loop() {
		cfg, err := LoadConfig("")
		if err != nil {
			b.Fatal(err)
		}
		_ = cfg
	}
}
