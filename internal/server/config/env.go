package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/verikeep/internal/flagx"
)

// parseEnv overlays values from the process environment. A dotenv file is
// loaded first: the one named by -env, or ./.env when present. Variables
// already set in the environment win over the file.
func parseEnv(config *Config) {
	loadDotEnv(flagx.EnvFileFlags())

	envString(&config.HTTPAddr, "VERIKEEP_HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.TokenValidityDuration, "TOKEN_TTL")
	envDuration(&config.CodeValidityDuration, "CODE_TTL")
	envString(&config.Notifier, "NOTIFIER")
	envString(&config.SMTPHost, "MAIL_SERVER")
	envInt(&config.SMTPPort, "MAIL_PORT")
	envString(&config.SMTPUsername, "MAIL_USERNAME")
	envString(&config.SMTPPassword, "MAIL_PASSWORD")
	envString(&config.SMTPSender, "MAIL_DEFAULT_SENDER")
	envString(&config.SESRegion, "SES_REGION")
	envString(&config.SESAccessKey, "SES_ACCESS_KEY")
	envString(&config.SESSecretKey, "SES_SECRET_KEY")
	envString(&config.SESEndpoint, "SES_ENDPOINT")
	envList(&config.KafkaBrokers, "KAFKA_BROKERS")
	envString(&config.KafkaTopic, "KAFKA_TOPIC")
	envList(&config.CORSOrigins, "CORS_ORIGINS")
	envString(&config.LogBackend, "LOG_BACKEND")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func loadDotEnv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func envList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
