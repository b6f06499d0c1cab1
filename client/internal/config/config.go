package config

import (
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

const (
	Path = ".warden.yml"
)

type (
	Config struct {
		Host string `yaml:"host"`
	}
)

func Parse() (Config, error) {
	return ParseFile(Path)
}

func ParseFile(path string) (Config, error) {
	c := Config{}
	fi, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer fi.Close()

	value, err := io.ReadAll(fi)
	if err != nil {
		return c, err
	}

	if err = yaml.Unmarshal(value, &c); err != nil {
		return c, err
	}

	return c, nil
}

func SaveConfig(c Config) error {
	return SaveFile(Path, c)
}

func SaveFile(path string, c Config) error {
	value, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, value, 0600)
}
