package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Storage struct {
		DataDir   string `toml:"data_dir"`
		UploadDir string `toml:"upload_dir"`
	} `toml:"storage"`

	Database struct {
		AuditDSN string `toml:"audit_dsn"`
	} `toml:"database"`

	Sessions struct {
		RedisURL   string `toml:"redis_url"`
		TTLMinutes int    `toml:"ttl_minutes"`
	} `toml:"sessions"`

	Metrics struct {
		Port string `toml:"port"`
	} `toml:"metrics"`

	Policy struct {
		GuidanceCap int `toml:"guidance_cap"`
		ReviewCap   int `toml:"review_cap"`
	} `toml:"policy"`

	Workflow struct {
		CoolingOffMinutes int `toml:"cooling_off_minutes"`
	} `toml:"workflow"`

	Security struct {
		Hasher string `toml:"hasher"`
	} `toml:"security"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads/theses"
	}
	if c.Sessions.TTLMinutes <= 0 {
		c.Sessions.TTLMinutes = 60
	}
	if c.Policy.GuidanceCap <= 0 {
		c.Policy.GuidanceCap = 5
	}
	if c.Policy.ReviewCap <= 0 {
		c.Policy.ReviewCap = 10
	}
	if c.Workflow.CoolingOffMinutes <= 0 {
		c.Workflow.CoolingOffMinutes = 3
	}
	if c.Security.Hasher == "" {
		c.Security.Hasher = "sha256"
	}
}
