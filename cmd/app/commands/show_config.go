package commands

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/allisson/authgate/internal/config"
)

// configDocument mirrors the config file schema so the printed document can
// be fed back as a config file. Durations are expressed in seconds, matching
// what the file layer accepts.
type configDocument struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		URI string `yaml:"uri"`
	} `yaml:"store"`
	Directory struct {
		URI         string `yaml:"uri"`
		User        string `yaml:"user"`
		Pass        string `yaml:"pass"`
		BaseDN      string `yaml:"base_dn"`
		UserPattern string `yaml:"user_pattern"`
	} `yaml:"directory"`
	Token struct {
		TTL int `yaml:"ttl"`
	} `yaml:"token"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	RateLimit struct {
		Enabled        bool    `yaml:"enabled"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		Burst          int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	CORS struct {
		Enabled      bool   `yaml:"enabled"`
		AllowOrigins string `yaml:"allow_origins"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled   bool   `yaml:"enabled"`
		Namespace string `yaml:"namespace"`
		Port      int    `yaml:"port"`
	} `yaml:"metrics"`
}

// RunShowConfig prints the fully resolved configuration as YAML with the
// directory bind password masked. Useful for checking which layer won for a
// given field before starting the server.
func RunShowConfig(cfg *config.Config, out io.Writer) error {
	redacted := cfg.Redacted()

	var doc configDocument
	doc.Server.Address = redacted.Server.Address
	doc.Server.Port = redacted.Server.Port
	doc.Store.URI = redacted.Store.URI
	doc.Directory.URI = redacted.Directory.URI
	doc.Directory.User = redacted.Directory.User
	doc.Directory.Pass = redacted.Directory.Pass
	doc.Directory.BaseDN = redacted.Directory.BaseDN
	doc.Directory.UserPattern = redacted.Directory.UserPattern
	doc.Token.TTL = int(redacted.Token.TTL.Seconds())
	doc.Log.Level = redacted.Log.Level
	doc.RateLimit.Enabled = redacted.RateLimit.Enabled
	doc.RateLimit.RequestsPerSec = redacted.RateLimit.RequestsPerSec
	doc.RateLimit.Burst = redacted.RateLimit.Burst
	doc.CORS.Enabled = redacted.CORS.Enabled
	doc.CORS.AllowOrigins = redacted.CORS.AllowOrigins
	doc.Metrics.Enabled = redacted.Metrics.Enabled
	doc.Metrics.Namespace = redacted.Metrics.Namespace
	doc.Metrics.Port = redacted.Metrics.Port

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = out.Write(data)
	return err
}
