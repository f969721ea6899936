package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lonng/coins/protocol/codec"
	"github.com/spf13/viper"
)

// Config 命令行和配置文件的合并结果, 命令行优先
type Config struct {
	Addr        string        `mapstructure:"addr"`
	Path        string        `mapstructure:"path"`
	Static      string        `mapstructure:"static"`
	Metrics     string        `mapstructure:"metrics"`
	ServiceAddr string        `mapstructure:"service-addr"`
	Codec       string        `mapstructure:"codec"`
	Heartbeat   time.Duration `mapstructure:"heartbeat"`
	Audit       time.Duration `mapstructure:"audit"`
	Debug       bool          `mapstructure:"debug"`
}

var defaults = map[string]any{
	"addr":         ":8081",
	"path":         "/ws",
	"static":       "",
	"metrics":      "/metrics",
	"service-addr": "",
	"codec":        "json",
	"heartbeat":    30 * time.Second,
	"audit":        10 * time.Second,
	"debug":        false,
}

// loadConfig 按 默认值 < 配置文件 < COINS_ 环境变量 < overrides 的顺序合并配置
func loadConfig(v *viper.Viper, file string, overrides map[string]any) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("COINS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	if c.Metrics != "" && !strings.HasPrefix(c.Metrics, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.Metrics)
	}
	if c.Metrics == c.Path {
		return fmt.Errorf("metrics path and websocket path are both %q", c.Path)
	}
	if _, err := codec.Lookup(c.Codec); err != nil {
		return fmt.Errorf("codec %q: %w", c.Codec, err)
	}
	if c.Heartbeat < 0 || c.Audit < 0 {
		return errors.New("intervals must not be negative")
	}
	return nil
}
