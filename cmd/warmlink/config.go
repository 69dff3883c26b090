package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      int    `yaml:"port"`
	Templates string `yaml:"templates"`
	Static    string `yaml:"static"`
	// SQLite file for warm-up state, empty for in-memory
	DB             string        `yaml:"db"`
	DisablePresend bool          `yaml:"disablePresend"`
	ServerPush     bool          `yaml:"serverPush"`
	Routes         []ConfigRoute `yaml:"routes"`
}

type ConfigRoute struct {
	Path     string `yaml:"path"`
	Template string `yaml:"template"`
	Title    string `yaml:"title"`
}

func getConfig(filename string) (Config, error) {
	config := Config{
		Port:      8080,
		Templates: "templates",
		Static:    "static",
	}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
