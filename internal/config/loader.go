package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Validator is implemented by every configuration that can check itself after loading.
type Validator interface {
	Validate() error
}

// Options controls where Load looks for configuration sources.
type Options struct {
	// ConfigFile is the YAML file loaded first. Missing files are ignored.
	ConfigFile string
	// EnvFile is a dotenv file loaded on top of the YAML file. Missing files are ignored.
	EnvFile string
	// EnvPrefix selects the process environment variables loaded last, e.g. "CATALOG_".
	EnvPrefix string
}

// DefaultOptions returns the conventional sources for a service:
// config.yaml, .env and <SERVICE>_ prefixed environment variables.
func DefaultOptions(serviceName string) Options {
	return Options{
		ConfigFile: "config.yaml",
		EnvFile:    ".env",
		EnvPrefix:  fmt.Sprintf("%s_", strings.ToUpper(serviceName)),
	}
}

// LoadInto reads cfg from the yaml file, the .env file and the environment (highest priority),
// then validates it.
func LoadInto[T Validator](cfg T, opts Options) (T, error) {
	k := koanf.New(".")

	// 1. Load configuration from yaml file
	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("WARN: error loading YAML config file '%s': %v", opts.ConfigFile, err)
			}
		}
	}

	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(opts.EnvPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}

	// 2. Load environment variables from .env file
	if opts.EnvFile != "" {
		if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				envMap[envTransformer(key)] = value
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(opts.EnvPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
