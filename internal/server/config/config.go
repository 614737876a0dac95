// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment (with optional .env file)
// and command-line flags.
package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Notifier transports.
const (
	NotifierLog   = "log"
	NotifierSMTP  = "smtp"
	NotifierSES   = "ses"
	NotifierKafka = "kafka"
)

// Config holds runtime settings for the verikeep server.
//
// Fields:
//   - HTTPAddr: bind address for the REST API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: bearer token lifetime.
//   - CodeValidityDuration / CodeLength: verification code policy.
//   - MinPasswordLength / BcryptCost: credential policy.
//   - Notifier / NotifyTimeout: verification code transport and its deadline.
//   - SMTP*, SES*, Kafka*: transport settings for the chosen notifier.
//   - CORSOrigins: allowed browser origins.
//   - LogBackend / LogLevel / LogFormat: logger selection.
//   - ShutdownTimeout: grace period for in-flight requests on stop.
type Config struct {
	HTTPAddr              string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	CodeValidityDuration  time.Duration
	CodeLength            int
	MinPasswordLength     int
	BcryptCost            int
	Notifier              string
	NotifyTimeout         time.Duration
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPSender            string
	SESRegion             string
	SESAccessKey          string
	SESSecretKey          string
	SESEndpoint           string
	KafkaBrokers          []string
	KafkaTopic            string
	CORSOrigins           []string
	LogBackend            string
	LogLevel              string
	LogFormat             string
	ShutdownTimeout       time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure for production and must be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.CodeValidityDuration = 10 * time.Minute
	c.CodeLength = 6
	c.MinPasswordLength = 6
	c.BcryptCost = 10
	c.Notifier = NotifierLog
	c.NotifyTimeout = 10 * time.Second
	c.SMTPHost = "smtp.gmail.com"
	c.SMTPPort = 587
	c.SMTPSender = "noreply@verikeep.local"
	c.SESRegion = "us-east-1"
	c.KafkaBrokers = []string{"localhost:9092"}
	c.KafkaTopic = "verification-codes"
	c.CORSOrigins = []string{"*"}
	c.LogBackend = "zap"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
}

// Validate checks that the assembled configuration is usable.
func (c *Config) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.TokenValidityDuration, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CodeValidityDuration, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CodeLength, validation.Required, validation.Min(4), validation.Max(10)),
		validation.Field(&c.MinPasswordLength, validation.Required, validation.Min(1)),
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(4), validation.Max(31)),
		validation.Field(&c.Notifier, validation.Required, validation.In(NotifierLog, NotifierSMTP, NotifierSES, NotifierKafka)),
		validation.Field(&c.NotifyTimeout, validation.Required),
	}

	switch c.Notifier {
	case NotifierSMTP:
		rules = append(rules,
			validation.Field(&c.SMTPHost, validation.Required),
			validation.Field(&c.SMTPPort, validation.Required),
			validation.Field(&c.SMTPSender, validation.Required),
		)
	case NotifierSES:
		rules = append(rules,
			validation.Field(&c.SESRegion, validation.Required),
			validation.Field(&c.SMTPSender, validation.Required),
		)
	case NotifierKafka:
		rules = append(rules,
			validation.Field(&c.KafkaBrokers, validation.Required),
			validation.Field(&c.KafkaTopic, validation.Required),
		)
	}

	return validation.ValidateStruct(c, rules...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
