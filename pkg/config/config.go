// Package config loads jobpilot settings from .jobpilot.yaml and JOBPILOT_*
// environment variables via viper. There are no ambient globals beyond the
// viper instance; everything the pipeline needs is threaded through Config.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config carries every setting the pipeline and its collaborators need.
type Config struct {
	Agent        string        `mapstructure:"agent" yaml:"agent,omitempty"`
	Schema       string        `mapstructure:"schema" yaml:"schema,omitempty"`
	CVPath       string        `mapstructure:"cv_path" yaml:"cv_path,omitempty"`
	HistoryPath  string        `mapstructure:"history_path" yaml:"history_path,omitempty"`
	WorkDir      string        `mapstructure:"work_dir" yaml:"work_dir,omitempty"`
	Repos        []string      `mapstructure:"repos" yaml:"repos,omitempty"`
	TopN         int           `mapstructure:"top_n" yaml:"top_n,omitempty"`
	StageTimeout time.Duration `mapstructure:"stage_timeout" yaml:"stage_timeout,omitempty"`
	Deadline     time.Duration `mapstructure:"deadline" yaml:"deadline,omitempty"`
}

var (
	configFile = ".jobpilot.yaml"
	v          *viper.Viper
)

func init() {
	v = newViper()
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetConfigFile(configFile)

	nv.SetDefault("agent", "claude-sonnet-4-5")
	nv.SetDefault("work_dir", ".jobpilot")
	nv.SetDefault("top_n", 5)
	nv.SetDefault("stage_timeout", "2m")

	nv.SetEnvPrefix("JOBPILOT")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	// Missing config file is fine; defaults and env apply.
	_ = nv.ReadInConfig()
	return nv
}

// Path returns the config file path.
func Path() string {
	return configFile
}

// Load unmarshals the effective configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Keys lists the settable config keys.
func Keys() []string {
	return []string{"agent", "schema", "cv_path", "history_path", "work_dir", "repos", "top_n", "stage_timeout", "deadline"}
}

// Get returns the string form of a config value. List values ("repos")
// come back comma-joined.
func Get(key string) (string, error) {
	for _, k := range Keys() {
		if k == key {
			if key == "repos" {
				return strings.Join(v.GetStringSlice(key), ","), nil
			}
			return v.GetString(key), nil
		}
	}
	return "", fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
}

// Set updates one key and rewrites the config file. List values ("repos")
// are given comma-separated.
func Set(key, value string) error {
	found := false
	for _, k := range Keys() {
		if k == key {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	if key == "repos" {
		v.Set(key, splitList(value))
	} else {
		v.Set(key, value)
	}
	cfg, err := Load()
	if err != nil {
		return err
	}
	return Save(cfg)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// All returns the effective settings for display.
func All() map[string]string {
	out := make(map[string]string, len(Keys()))
	for _, k := range Keys() {
		val, err := Get(k)
		if err != nil {
			continue
		}
		out[k] = val
	}
	return out
}

// Save writes the full config to the config file.
func Save(cfg *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(configFile, buf.Bytes(), 0o644)
}

// ResetForTest points config at a temp directory (only use in tests).
func ResetForTest(testPath string) {
	configFile = testPath + "/.jobpilot.yaml"
	v = newViper()
}
