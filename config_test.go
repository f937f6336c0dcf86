package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missingFileKeepsDefaults", func(t *testing.T) {
		dir := t.TempDir()
		c, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(dir), c)
		assert.Equal(t, "claude", c.AI.Provider)
		assert.Equal(t, 5, c.TopMerchants)
		assert.Equal(t, 100.0, c.Interests.SpendThreshold)
	})

	t.Run("override", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "config.yaml", `data_dir: /srv/bank
files:
  kyc: profile.csv
ai:
  provider: gemini
  max_tokens: 2048
top_merchants: 0
interests:
  spend_threshold: 250
`)
		c, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "/srv/bank", c.DataDir)
		assert.Equal(t, "output", c.OutputDir)
		assert.Equal(t, "profile.csv", c.Files.KYC)
		assert.Equal(t, "Account_Statement.csv", c.Files.Transactions)
		assert.Equal(t, "gemini", c.AI.Provider)
		assert.Equal(t, int64(2048), c.AI.MaxTokens)
		assert.Equal(t, defaultGeminiModel, c.model())
		assert.Equal(t, 5, c.TopMerchants)
		assert.Equal(t, 250.0, c.Interests.SpendThreshold)
		assert.Equal(t, "/srv/bank/profile.csv", c.dataPath(c.Files.KYC))
	})

	t.Run("badYaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "config.yaml", "ai: [unclosed\n")
		_, err := loadConfig(dir)
		assert.Error(t, err)
	})
}

func TestConfigKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-env")
	t.Setenv("GEMINI_API_KEY", "gemini-env")
	t.Setenv("OPENAI_API_KEY", "openai-env")

	c := defaultConfig("")
	assert.Equal(t, "anthropic-env", c.apiKey())
	assert.Equal(t, defaultClaudeModel, c.model())
	c.AI.Provider = "gemini"
	assert.Equal(t, "gemini-env", c.apiKey())
	c.AI.APIKey = "from-file"
	assert.Equal(t, "from-file", c.apiKey())
	c.AI.Model = "custom"
	assert.Equal(t, "custom", c.model())

	assert.Equal(t, "openai-env", c.voiceKey())
	c.Voice.APIKey = "voice-file"
	assert.Equal(t, "voice-file", c.voiceKey())
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	c := defaultConfig(filepath.Join(root, "conf"))
	c.DataDir = filepath.Join(root, "data")
	c.OutputDir = filepath.Join(root, "out")
	require.NoError(t, ensureDirectories(c))

	for _, dir := range []string{c.confDir, c.DataDir, c.OutputDir, c.audioDir()} {
		fi, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}
