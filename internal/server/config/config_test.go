package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 10*time.Minute, c.CodeValidityDuration)
	assert.Equal(t, 6, c.CodeLength)
	assert.Equal(t, 6, c.MinPasswordLength)
	assert.Equal(t, NotifierLog, c.Notifier)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Equal(t, "zap", c.LogBackend)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 10*time.Minute, c.CodeValidityDuration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty secret", func(c *Config) { c.SecretKey = "" }, true},
		{"unknown notifier", func(c *Config) { c.Notifier = "pigeon" }, true},
		{"code too short", func(c *Config) { c.CodeLength = 2 }, true},
		{"zero token ttl", func(c *Config) { c.TokenValidityDuration = 0 }, true},
		{"smtp without host", func(c *Config) { c.Notifier = NotifierSMTP; c.SMTPHost = "" }, true},
		{"smtp ok", func(c *Config) { c.Notifier = NotifierSMTP }, false},
		{"kafka without brokers", func(c *Config) { c.Notifier = NotifierKafka; c.KafkaBrokers = nil }, true},
		{"ses ok", func(c *Config) { c.Notifier = NotifierSES }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
