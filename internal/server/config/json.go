package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/verikeep/internal/flagx"
	"github.com/dmitrijs2005/verikeep/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10m" and integer nanoseconds are accepted. Only
// fields present (non-zero) in the file override the current values.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	CodeValidityDuration  timex.Duration `json:"code_validity_duration"`
	CodeLength            int            `json:"code_length"`
	MinPasswordLength     int            `json:"min_password_length"`
	BcryptCost            int            `json:"bcrypt_cost"`
	Notifier              string         `json:"notifier"`
	NotifyTimeout         timex.Duration `json:"notify_timeout"`
	SMTPHost              string         `json:"smtp_host"`
	SMTPPort              int            `json:"smtp_port"`
	SMTPUsername          string         `json:"smtp_username"`
	SMTPPassword          string         `json:"smtp_password"`
	SMTPSender            string         `json:"smtp_sender"`
	SESRegion             string         `json:"ses_region"`
	SESAccessKey          string         `json:"ses_access_key"`
	SESSecretKey          string         `json:"ses_secret_key"`
	SESEndpoint           string         `json:"ses_endpoint"`
	KafkaBrokers          []string       `json:"kafka_brokers"`
	KafkaTopic            string         `json:"kafka_topic"`
	CORSOrigins           []string       `json:"cors_origins"`
	LogBackend            string         `json:"log_backend"`
	LogLevel              string         `json:"log_level"`
	LogFormat             string         `json:"log_format"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens; an unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setDuration(&config.CodeValidityDuration, c.CodeValidityDuration)
	setInt(&config.CodeLength, c.CodeLength)
	setInt(&config.MinPasswordLength, c.MinPasswordLength)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.Notifier, c.Notifier)
	setDuration(&config.NotifyTimeout, c.NotifyTimeout)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPSender, c.SMTPSender)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.SESAccessKey, c.SESAccessKey)
	setString(&config.SESSecretKey, c.SESSecretKey)
	setString(&config.SESEndpoint, c.SESEndpoint)
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
