package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Lang    string `yaml:"lang"`
	Store   struct {
		Kind   string `yaml:"kind"`
		Redis  string `yaml:"redis_addr"`
		SQLite string `yaml:"sqlite_path"`
	} `yaml:"store"`
	KeepMessages int `yaml:"keep_messages"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := yaml.Unmarshal(file, &conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if conf.Store.Kind == "" {
		conf.Store.Kind = "memory"
	}
	return &conf, nil
}
