package main

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nikmy/shifter/internal/api"
	"github.com/nikmy/shifter/internal/auth"
	"github.com/nikmy/shifter/internal/repo"
	"github.com/nikmy/shifter/pkg/environment"
	"github.com/nikmy/shifter/pkg/errors"
)

type Config struct {
	Environment environment.Env `yaml:"Environment"`
	HTTP        api.Config      `yaml:"HTTP"`
	Auth        auth.Config     `yaml:"Auth"`
	Storage     repo.Config     `yaml:"Storage"`
	Shifts      ShiftsConfig    `yaml:"Shifts"`
}

type ShiftsConfig struct {
	// Timezone applies to date-times sent without an offset.
	Timezone string `yaml:"timezone"`
}

// loadConfig reads the YAML file at path after loading dotenv into the
// process environment; ${VAR} references in the file are expanded.
func loadConfig(path, dotenv string) (*Config, error) {
	err := godotenv.Load(dotenv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WrapFailf(err, "load %q", dotenv)
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapFail(err, "build path to config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFailf(err, "read %q", path)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Config{Environment: environment.Development}
	err := yaml.Unmarshal([]byte(expanded), &cfg)
	if err != nil {
		return nil, errors.WrapFail(err, "parse yaml")
	}

	return &cfg, nil
}
