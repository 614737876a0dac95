package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/verikeep/internal/flagx"
	"github.com/dmitrijs2005/verikeep/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Fields
// missing from the file keep their current values. Panics on read or decode
// errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
